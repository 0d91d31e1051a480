package scenario

import (
	"fmt"

	"github.com/rs/zerolog"

	"ember/internal/ir"
	"ember/internal/target"
	"ember/internal/types"
	"ember/internal/unwind"
)

// OpResult records the handle one operation returned, if any.
type OpResult struct {
	Op    string
	Scope unwind.ScopeID
	Block ir.BlockID
}

// Result of running a script.
type Result struct {
	Script *Script
	Fn     *ir.Func
	Types  *types.Interner
	Blocks map[string]ir.BlockID
	Ops    []OpResult
}

// Run executes a script against a fresh generation context. Script
// mistakes (unknown values, bad scope numbers) are returned as errors;
// contract violations inside the generator keep their panic semantics.
func Run(s *Script, tgt *target.Target, log zerolog.Logger) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("scenario: nil script")
	}

	typesIn := types.NewInterner()
	table := newTypeTable(typesIn)
	if err := table.declare(s.Types); err != nil {
		return nil, err
	}

	ctx := unwind.NewContext(s.Func, typesIn, tgt, log)

	valueLocals := make(map[string]ir.LocalID, len(s.Values))
	valueTypes := make(map[string]types.TypeID, len(s.Values))
	for _, v := range s.Values {
		if v.Name == "" {
			return nil, fmt.Errorf("scenario: value definition without a name")
		}
		if _, exists := valueLocals[v.Name]; exists {
			return nil, fmt.Errorf("scenario: duplicate value %q", v.Name)
		}
		ty, err := table.resolve(v.Type)
		if err != nil {
			return nil, fmt.Errorf("scenario: value %q: %w", v.Name, err)
		}
		valueLocals[v.Name] = ctx.NewLocal(v.Name, ty)
		valueTypes[v.Name] = ty
	}

	res := &Result{
		Script: s,
		Fn:     ctx.Fn,
		Types:  typesIn,
		Blocks: make(map[string]ir.BlockID),
	}
	pos := ctx.Fn.Entry

	for i, op := range s.Ops {
		out := OpResult{Op: op.Op, Scope: unwind.NoScopeID, Block: ir.NoBlockID}
		switch op.Op {
		case "push":
			out.Scope = ctx.PushScope()

		case "schedule", "schedule_fields":
			local, ok := valueLocals[op.Value]
			if !ok {
				return nil, fmt.Errorf("scenario: op %d: unknown value %q", i, op.Value)
			}
			if op.Scope < 0 || int(op.Scope) >= ctx.Depth() {
				return nil, fmt.Errorf("scenario: op %d: scope %d is not open", i, op.Scope)
			}
			if op.Op == "schedule" {
				ctx.ScheduleDrop(unwind.ScopeID(op.Scope), local, valueTypes[op.Value])
			} else {
				ctx.ScheduleDropFields(unwind.ScopeID(op.Scope), local, valueTypes[op.Value])
			}

		case "pop_emit":
			if int(op.Scope) != ctx.Depth()-1 {
				return nil, fmt.Errorf("scenario: op %d: pop_emit scope %d is not the top (depth %d)", i, op.Scope, ctx.Depth())
			}
			pos = ctx.PopAndEmit(unwind.ScopeID(op.Scope), pos)
			out.Block = pos

		case "landing_pad":
			out.Block = ctx.LandingPad()

		case "exit_chain":
			tb := ir.NoBlockID
			if op.Target != "" {
				b, ok := res.Blocks[op.Target]
				if !ok {
					return nil, fmt.Errorf("scenario: op %d: unknown target block %q", i, op.Target)
				}
				tb = b
			}
			out.Block = ctx.ExitChain(ctx.FuncLabel(), tb)

		case "block":
			if op.Name == "" {
				return nil, fmt.Errorf("scenario: op %d: block without a name", i)
			}
			bb := ctx.NewBlock(op.Name)
			switch op.Term {
			case "", "none":
			case "return":
				ctx.StartBlock(bb)
				ctx.SetTerm(&ir.Terminator{Kind: ir.TermReturn})
				ctx.StartBlock(pos)
			default:
				return nil, fmt.Errorf("scenario: op %d: invalid term %q (expected: none|return)", i, op.Term)
			}
			res.Blocks[op.Name] = bb
			out.Block = bb

		default:
			return nil, fmt.Errorf("scenario: op %d: unknown op %q", i, op.Op)
		}
		res.Ops = append(res.Ops, out)
	}

	// Close the normal path so dumps validate cleanly.
	ctx.StartBlock(pos)
	ctx.SetTerm(&ir.Terminator{Kind: ir.TermReturn})

	return res, nil
}
