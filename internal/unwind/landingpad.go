package unwind

import (
	"fmt"

	"ember/internal/ir"
)

// LandingPad returns the block the unwinding runtime transfers control
// to when a panic crosses the current point. The block runs every
// pending drop on the stack and finally resumes unwinding.
//
// Precondition: at least one open scope needs unwinding work (see
// NeedsInvoke). Repeated calls with an unchanged stack return the same
// cached block.
func (c *Context) LandingPad() ir.BlockID {
	c.log.Debug().Int("scopes", len(c.scopes)).Msg("resolve landing pad")

	savedCur := c.cur
	defer func() { c.cur = savedCur }()

	origDepth := len(c.scopes)
	if origDepth == 0 {
		panic(fmt.Errorf("unwind: landing pad requested with no open scopes"))
	}

	// Scopes with nothing to do on unwinding are set aside; the first
	// scope that needs action owns the pad.
	var popped []*Scope
	for !c.topScope().needsInvoke() {
		popped = append(popped, c.popScope())
	}

	owner := c.topScope()
	var llbb ir.BlockID
	if owner.cachedLandingPad != ir.NoBlockID {
		llbb = owner.cachedLandingPad
	} else {
		pad := c.NewBlock("unwind")
		// Cache before building: a re-entrant resolution hitting this
		// scope must find the block instead of allocating another one.
		owner.cachedLandingPad = pad
		c.StartBlock(pad)

		c.Fn.Personality = c.Target.Personality

		var val Label
		if c.Target.WantsFuncletEH() {
			// A cleanup pad with no filters runs cleanup on every
			// exception.
			padVal := c.emitCleanupPad()
			c.Fn.Block(pad).Funclet = ir.Funclet{Kind: ir.FuncletMSVC, Pad: padVal}
			val = Label{Kind: CleanupPadKind, Pad: padVal}
		} else {
			// The landing pad's only clause is 'cleanup'. The record it
			// produces is stashed in the per-function scratch slot so
			// it survives to the resume point.
			rec := c.emitLandingPad()
			slot := c.ensureExcLocal()
			c.emitStoreLocal(slot, rec)
			val = Label{Kind: LandingPadKind}
		}

		cleanup := c.exitChain(val, ir.NoBlockID)
		val.branch(c, pad, cleanup)
		llbb = pad
	}

	// Restore the scopes set aside above, in reverse removal order.
	for len(popped) > 0 {
		c.pushScopeRecord(popped[len(popped)-1])
		popped = popped[:len(popped)-1]
	}

	if len(c.scopes) != origDepth {
		panic(fmt.Errorf("unwind: scope stack depth changed during landing pad resolution: got=%d want=%d", len(c.scopes), origDepth))
	}
	return llbb
}
