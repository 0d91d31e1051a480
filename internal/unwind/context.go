package unwind

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/rs/zerolog"

	"ember/internal/ir"
	"ember/internal/target"
	"ember/internal/types"
)

// Context carries the state of unwind code generation for one function
// under translation: the function body being built, the cleanup scope
// stack, the current block cursor, and the lazily created scratch local
// that keeps the exception record alive between a landing pad and the
// eventual resume.
//
// A Context is single-threaded; it is never shared across functions.
type Context struct {
	Fn     *ir.Func
	Types  *types.Interner
	Target *target.Target

	log zerolog.Logger

	cur       ir.BlockID
	nextValue int32
	nextName  map[string]int

	scopes   []*Scope
	excLocal ir.LocalID
}

// NewContext builds a fresh function and its generation context. The
// entry block is allocated and made current.
func NewContext(name string, typesIn *types.Interner, tgt *target.Target, log zerolog.Logger) *Context {
	c := &Context{
		Fn:       &ir.Func{Name: name},
		Types:    typesIn,
		Target:   tgt,
		log:      log,
		nextName: make(map[string]int),
		excLocal: ir.NoLocalID,
	}
	c.Fn.Entry = c.NewBlock("entry")
	c.cur = c.Fn.Entry
	return c
}

// FuncLabel returns the unwind label tag this function uses. The tag is
// fixed for the function's lifetime by the target's exception model.
func (c *Context) FuncLabel() Label {
	if c.Target.WantsFuncletEH() {
		return Label{Kind: CleanupPadKind, Pad: ir.NoValueID}
	}
	return Label{Kind: LandingPadKind}
}

// NewBlock allocates a new unterminated block. The hint only feeds the
// debug name; block identity is the returned ID.
func (c *Context) NewBlock(hint string) ir.BlockID {
	raw, err := safecast.Conv[int32](len(c.Fn.Blocks))
	if err != nil {
		panic(fmt.Errorf("unwind: block id overflow: %w", err))
	}
	id := ir.BlockID(raw)
	n := c.nextName[hint]
	c.nextName[hint] = n + 1
	c.Fn.Blocks = append(c.Fn.Blocks, ir.Block{
		ID:   id,
		Name: fmt.Sprintf("%s%d", hint, n),
		Term: ir.Terminator{Kind: ir.TermNone},
	})
	return id
}

// NewLocal allocates a local slot.
func (c *Context) NewLocal(name string, ty types.TypeID) ir.LocalID {
	raw, err := safecast.Conv[int32](len(c.Fn.Locals))
	if err != nil {
		panic(fmt.Errorf("unwind: local id overflow: %w", err))
	}
	id := ir.LocalID(raw)
	c.Fn.Locals = append(c.Fn.Locals, ir.Local{Name: name, Type: ty})
	return id
}

// StartBlock moves the emission cursor.
func (c *Context) StartBlock(id ir.BlockID) {
	c.cur = id
}

// Cur returns the block the cursor is on.
func (c *Context) Cur() ir.BlockID {
	return c.cur
}

func (c *Context) curBlock() *ir.Block {
	b := c.Fn.Block(c.cur)
	if b == nil {
		panic(fmt.Errorf("unwind: cursor on unknown block bb%d", c.cur))
	}
	return b
}

// SetTerm terminates the current block. No-op if it already has a
// terminator.
func (c *Context) SetTerm(t *ir.Terminator) {
	b := c.curBlock()
	if b.Terminated() || t == nil {
		return
	}
	b.Term = *t
}

// terminate sets the terminator of a specific block, which must not be
// terminated yet. Generated cleanup blocks get exactly one terminator;
// a second one is a consistency bug.
func (c *Context) terminate(bb ir.BlockID, t ir.Terminator) {
	b := c.Fn.Block(bb)
	if b == nil {
		panic(fmt.Errorf("unwind: terminating unknown block bb%d", bb))
	}
	if b.Terminated() {
		panic(fmt.Errorf("unwind: block bb%d already terminated", bb))
	}
	b.Term = t
}

func (c *Context) emit(ins ir.Instr) {
	b := c.curBlock()
	if b.Terminated() {
		panic(fmt.Errorf("unwind: emitting into terminated block bb%d", c.cur))
	}
	b.Instrs = append(b.Instrs, ins)
}

func (c *Context) newValue() ir.ValueID {
	id := ir.ValueID(c.nextValue)
	c.nextValue++
	return id
}

// emitCall emits a call carrying the current block's funclet bundle.
func (c *Context) emitCall(callee string, args []ir.Arg) {
	c.emit(ir.Instr{
		Kind:   ir.InstrCall,
		Result: ir.NoValueID,
		Call:   ir.CallInstr{Callee: callee, Args: args, Funclet: c.curBlock().Funclet},
	})
}

func (c *Context) emitCleanupPad() ir.ValueID {
	v := c.newValue()
	c.emit(ir.Instr{Kind: ir.InstrCleanupPad, Result: v})
	return v
}

func (c *Context) emitLandingPad() ir.ValueID {
	v := c.newValue()
	c.emit(ir.Instr{
		Kind:       ir.InstrLandingPad,
		Result:     v,
		LandingPad: ir.LandingPadInstr{Personality: c.Target.Personality, Cleanup: true},
	})
	return v
}

func (c *Context) emitLoadLocal(l ir.LocalID) ir.ValueID {
	v := c.newValue()
	c.emit(ir.Instr{Kind: ir.InstrLoadLocal, Result: v, LoadLocal: ir.LoadLocalInstr{Local: l}})
	return v
}

func (c *Context) emitStoreLocal(l ir.LocalID, val ir.ValueID) {
	c.emit(ir.Instr{Kind: ir.InstrStoreLocal, Result: ir.NoValueID, StoreLocal: ir.StoreLocalInstr{Local: l, Val: val}})
}

func (c *Context) emitExtractValue(agg ir.ValueID, index int) ir.ValueID {
	v := c.newValue()
	c.emit(ir.Instr{Kind: ir.InstrExtractValue, Result: v, Extract: ir.ExtractValueInstr{Agg: agg, Index: index}})
	return v
}

// ensureExcLocal returns the per-function scratch local for the
// exception record, allocating it on first use. Every landing pad in
// the function stores into the same slot.
func (c *Context) ensureExcLocal() ir.LocalID {
	if c.excLocal == ir.NoLocalID {
		c.excLocal = c.NewLocal("eh.slot", c.Types.Builtins().ExcRecord)
	}
	return c.excLocal
}

// excLocalOrPanic returns the scratch local, which must already exist:
// the resume path reloads a record some landing pad stored earlier.
func (c *Context) excLocalOrPanic() ir.LocalID {
	if c.excLocal == ir.NoLocalID {
		panic(fmt.Errorf("unwind: resume requested but no exception record slot was allocated"))
	}
	return c.excLocal
}
