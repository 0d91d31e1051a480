package unwind

import (
	"fmt"

	"ember/internal/ir"
)

// ExitChain generates (or reuses) the chain of blocks running every
// not-yet-executed drop between the top of the scope stack and the
// exit, and returns the entry block of that chain. The caller branches
// to it to run all remaining cleanups before reaching the exit.
//
// With a valid target block the chain ends by transferring control to
// it (break, continue, return). With target == ir.NoBlockID the stack
// is walked to the bottom and a terminal block is synthesized that
// resumes unwinding into the caller.
//
// Scopes are temporarily popped during the walk and always restored;
// the stack depth is identical before and after.
func (c *Context) ExitChain(label Label, target ir.BlockID) ir.BlockID {
	savedCur := c.cur
	defer func() { c.cur = savedCur }()
	return c.exitChain(label, target)
}

func (c *Context) exitChain(label Label, target ir.BlockID) ir.BlockID {
	c.log.Debug().
		Str("label", label.Kind.String()).
		Int32("target", int32(target)).
		Int("scopes", len(c.scopes)).
		Msg("build exit chain")

	origDepth := len(c.scopes)
	var prev ir.BlockID
	var popped []*Scope
	skip := 0

	// Walk down the stack without generating code, setting scopes aside
	// in removal order. The walk stops at a scope that already has a
	// cached exit for this label: the cached block contains the
	// cleanups for everything below it, so `skip` records how many of
	// that scope's drops it has baked in.
	for {
		if len(c.scopes) == 0 {
			if target != ir.NoBlockID {
				prev = target
				break
			}
			prev = c.emitResume(label)
			break
		}

		top := c.popScope()
		cached, last, ok := top.cachedEarlyExit(label)
		popped = append(popped, top)
		if ok {
			prev = cached
			skip = last
			break
		}
	}

	// Replay the removed scopes in reverse removal order, prepending a
	// cleanup block for each scope with drops not yet covered by `prev`.
	// A scope with no uncovered drops contributes nothing and is passed
	// through; in particular the scope whose cached exit ended the walk
	// is reused as-is unless drops were scheduled after the cache entry
	// was made. `skip` only applies to that first replayed scope.
	for len(popped) > 0 {
		scope := popped[len(popped)-1]
		popped = popped[:len(popped)-1]

		if n := len(scope.cleanups); n > skip {
			bb := c.NewBlock("clean")
			c.StartBlock(bb)
			exitLabel := label.start(c, bb)

			pos := bb
			for i := n - 1; i >= skip; i-- {
				pos = c.emitDrop(pos, scope.cleanups[i])
			}

			exitLabel.branch(c, pos, prev)
			prev = bb
			scope.addCachedEarlyExit(exitLabel, prev, n)
		}
		skip = 0
		c.pushScopeRecord(scope)
	}

	if len(c.scopes) != origDepth {
		panic(fmt.Errorf("unwind: scope stack depth changed during exit chain: got=%d want=%d", len(c.scopes), origDepth))
	}
	c.log.Debug().Int32("entry", int32(prev)).Msg("exit chain ready")
	return prev
}

// emitResume synthesizes the terminal block reached when unwinding has
// crossed every open scope: control goes back to the unwinding runtime.
func (c *Context) emitResume(label Label) ir.BlockID {
	bb := c.NewBlock("resume")
	c.StartBlock(bb)
	switch label.Kind {
	case LandingPadKind:
		slot := c.excLocalOrPanic()
		rec := c.emitLoadLocal(slot)
		if !c.Target.ExplicitResumeCall {
			c.terminate(bb, ir.Terminator{Kind: ir.TermResume, Resume: ir.ResumeTerm{Exc: rec}})
		} else {
			// No resume primitive on this target: call the runtime's
			// unwind-resume entry with the extracted exception pointer.
			excPtr := c.emitExtractValue(rec, 0)
			c.emitCall(c.Target.UnwindResume, []ir.Arg{ir.ValueArg(excPtr)})
			c.terminate(bb, ir.Terminator{Kind: ir.TermUnreachable})
		}
	case CleanupPadKind:
		pad := c.emitCleanupPad()
		c.terminate(bb, ir.Terminator{
			Kind:       ir.TermCleanupRet,
			CleanupRet: ir.CleanupRetTerm{Pad: pad, Target: ir.NoBlockID},
		})
	default:
		panic(fmt.Errorf("unwind: unknown label kind %d", label.Kind))
	}
	return bb
}
