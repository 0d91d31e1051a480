package unwind_test

import (
	"testing"

	"ember/internal/ir"
	"ember/internal/unwind"
)

func padSetup(t *testing.T, triple string) (*unwind.Context, unwind.ScopeID) {
	t.Helper()
	c, in := newTestContext(t, triple)
	ty := declDropType(in, "W")
	s := c.PushScope()
	c.ScheduleDrop(s, c.NewLocal("w", ty), ty)
	return c, s
}

func TestLandingPadCached(t *testing.T) {
	c, _ := padSetup(t, "x86_64-linux-gnu")
	first := c.LandingPad()
	blocks := len(c.Fn.Blocks)

	second := c.LandingPad()
	if second != first {
		t.Fatalf("repeat resolution returned bb%d, first was bb%d", second, first)
	}
	if got := len(c.Fn.Blocks); got != blocks {
		t.Fatalf("repeat resolution allocated %d new blocks", got-blocks)
	}
}

func TestLandingPadInvalidatedBySchedule(t *testing.T) {
	c, in := newTestContext(t, "x86_64-linux-gnu")
	tyA := declDropType(in, "A")
	tyB := declDropType(in, "B")
	s := c.PushScope()
	c.ScheduleDrop(s, c.NewLocal("a", tyA), tyA)

	first := c.LandingPad()
	c.ScheduleDrop(s, c.NewLocal("b", tyB), tyB)
	second := c.LandingPad()
	if second == first {
		t.Fatalf("stale landing pad reused after schedule")
	}

	resume := finalBlock(t, c.Fn, second)
	drops, _ := walkChain(t, c.Fn, second, resume)
	want := []string{"B", "A"}
	if !sameStrings(drops, want) {
		t.Fatalf("pad drop order = %v, want %v", drops, want)
	}
}

func TestLandingPadSkipsNoopScopes(t *testing.T) {
	c, _ := padSetup(t, "x86_64-linux-gnu")
	first := c.LandingPad()

	c.PushScope() // nothing scheduled, nothing to do on unwinding
	blocks := len(c.Fn.Blocks)
	second := c.LandingPad()
	if second != first {
		t.Fatalf("empty inner scope changed the pad: bb%d vs bb%d", second, first)
	}
	if got := len(c.Fn.Blocks); got != blocks {
		t.Fatalf("allocated %d new blocks through an empty scope", got-blocks)
	}
	if c.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", c.Depth())
	}
}

func TestLandingPadTableProtocol(t *testing.T) {
	c, _ := padSetup(t, "x86_64-linux-gnu")
	pad := c.LandingPad()

	if c.Fn.Personality != "ember_eh_personality" {
		t.Fatalf("personality = %q", c.Fn.Personality)
	}

	b := c.Fn.Block(pad)
	if len(b.Instrs) != 2 {
		t.Fatalf("pad block has %d instructions, want 2", len(b.Instrs))
	}
	lp := b.Instrs[0]
	if lp.Kind != ir.InstrLandingPad || !lp.LandingPad.Cleanup {
		t.Fatalf("pad must open with a cleanup landingpad, got %+v", lp)
	}
	st := b.Instrs[1]
	if st.Kind != ir.InstrStoreLocal || st.StoreLocal.Val != lp.Result {
		t.Fatalf("pad must stash the exception record, got %+v", st)
	}
	if b.Term.Kind != ir.TermGoto {
		t.Fatalf("pad term = %v, want goto into the cleanup chain", b.Term)
	}

	resume := finalBlock(t, c.Fn, pad)
	rb := c.Fn.Block(resume)
	if rb.Term.Kind != ir.TermResume {
		t.Fatalf("chain must end in resume, got %v", rb.Term)
	}
	if len(rb.Instrs) != 1 || rb.Instrs[0].Kind != ir.InstrLoadLocal ||
		rb.Instrs[0].LoadLocal.Local != st.StoreLocal.Local {
		t.Fatalf("resume must reload the stashed record, got %+v", rb.Instrs)
	}
}

func TestLandingPadSingleScratchLocal(t *testing.T) {
	c, in := newTestContext(t, "x86_64-linux-gnu")
	tyA := declDropType(in, "A")
	tyB := declDropType(in, "B")
	s := c.PushScope()
	c.ScheduleDrop(s, c.NewLocal("a", tyA), tyA)
	c.LandingPad()
	c.ScheduleDrop(s, c.NewLocal("b", tyB), tyB)
	c.LandingPad()

	slots := 0
	for _, l := range c.Fn.Locals {
		if l.Name == "eh.slot" {
			slots++
		}
	}
	if slots != 1 {
		t.Fatalf("function has %d exception record slots, want 1", slots)
	}
}

func TestLandingPadExplicitResumeCall(t *testing.T) {
	c, _ := padSetup(t, "x86_64-windows-gnu")
	pad := c.LandingPad()

	resume := finalBlock(t, c.Fn, pad)
	rb := c.Fn.Block(resume)
	if rb.Term.Kind != ir.TermUnreachable {
		t.Fatalf("explicit resume must end unreachable, got %v", rb.Term)
	}
	if len(rb.Instrs) != 3 {
		t.Fatalf("resume block has %d instructions, want load/extract/call", len(rb.Instrs))
	}
	if rb.Instrs[0].Kind != ir.InstrLoadLocal ||
		rb.Instrs[1].Kind != ir.InstrExtractValue ||
		rb.Instrs[2].Kind != ir.InstrCall {
		t.Fatalf("resume sequence wrong: %+v", rb.Instrs)
	}
	if rb.Instrs[1].Extract.Index != 0 || rb.Instrs[1].Extract.Agg != rb.Instrs[0].Result {
		t.Fatalf("resume must extract the pointer from the reloaded record, got %+v", rb.Instrs[1])
	}
	if rb.Instrs[2].Call.Callee != "ember_unwind_resume" {
		t.Fatalf("resume callee = %q", rb.Instrs[2].Call.Callee)
	}
}

func TestLandingPadFuncletProtocol(t *testing.T) {
	c, _ := padSetup(t, "x86_64-windows-msvc")
	pad := c.LandingPad()

	if c.Fn.Personality != "__CxxFrameHandler3" {
		t.Fatalf("personality = %q", c.Fn.Personality)
	}

	b := c.Fn.Block(pad)
	if len(b.Instrs) != 1 || b.Instrs[0].Kind != ir.InstrCleanupPad {
		t.Fatalf("pad must open with only a cleanup pad, got %+v", b.Instrs)
	}
	padVal := b.Instrs[0].Result
	if b.Funclet.Kind != ir.FuncletMSVC || b.Funclet.Pad != padVal {
		t.Fatalf("pad block funclet = %+v", b.Funclet)
	}
	if b.Term.Kind != ir.TermCleanupRet || b.Term.CleanupRet.Pad != padVal {
		t.Fatalf("pad must cleanupret on its own pad into the chain, got %v", b.Term)
	}
	if b.Term.CleanupRet.Target == ir.NoBlockID {
		t.Fatalf("pad with pending drops must not return straight to the caller")
	}
}

func TestLandingPadEmptyStackPanics(t *testing.T) {
	c, _ := newTestContext(t, "x86_64-linux-gnu")
	expectPanic(t, "landing pad without scopes", func() {
		c.LandingPad()
	})
}

// finalBlock walks branches from a block and returns the last block
// reached.
func finalBlock(t *testing.T, fn *ir.Func, from ir.BlockID) ir.BlockID {
	t.Helper()
	_, visited := walkChain(t, fn, from, ir.NoBlockID)
	if len(visited) == 0 {
		t.Fatalf("no blocks reached from bb%d", from)
	}
	return visited[len(visited)-1]
}
