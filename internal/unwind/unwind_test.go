package unwind_test

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ember/internal/ir"
	"ember/internal/target"
	"ember/internal/types"
	"ember/internal/unwind"
)

func newTestContext(t *testing.T, triple string) (*unwind.Context, *types.Interner) {
	t.Helper()
	tgt, err := target.ByTriple(triple)
	if err != nil {
		t.Fatalf("target %s: %v", triple, err)
	}
	in := types.NewInterner()
	return unwind.NewContext("test", in, tgt, zerolog.Nop()), in
}

// declDropType declares a struct with a destructor hook so its values
// carry a drop obligation. The name shows up in the glue symbol, which
// lets tests read execution order off the generated calls.
func declDropType(in *types.Interner, name string) types.TypeID {
	return in.DeclareStruct(types.StructInfo{Name: name, HasDtor: true})
}

// dropNames extracts the type names behind drop-glue calls in a block,
// in emission order.
func dropNames(b *ir.Block) []string {
	var out []string
	for i := range b.Instrs {
		ins := &b.Instrs[i]
		if ins.Kind != ir.InstrCall {
			continue
		}
		if rest, ok := strings.CutPrefix(ins.Call.Callee, "ember_drop."); ok {
			out = append(out, rest)
		}
		if rest, ok := strings.CutPrefix(ins.Call.Callee, "ember_drop_contents."); ok {
			out = append(out, "contents:"+rest)
		}
	}
	return out
}

// walkChain follows branches from a block, collecting drop order and
// the blocks visited, until it reaches stop or a terminal block.
func walkChain(t *testing.T, fn *ir.Func, from, stop ir.BlockID) (drops []string, visited []ir.BlockID) {
	t.Helper()
	seen := make(map[ir.BlockID]bool)
	cur := from
	for {
		if cur == stop {
			return drops, visited
		}
		if seen[cur] {
			t.Fatalf("cycle through bb%d", cur)
		}
		seen[cur] = true
		b := fn.Block(cur)
		if b == nil {
			t.Fatalf("walk reached unknown block bb%d", cur)
		}
		visited = append(visited, cur)
		drops = append(drops, dropNames(b)...)
		switch b.Term.Kind {
		case ir.TermGoto:
			cur = b.Term.Goto.Target
		case ir.TermCleanupRet:
			if b.Term.CleanupRet.Target == ir.NoBlockID {
				return drops, visited
			}
			cur = b.Term.CleanupRet.Target
		default:
			return drops, visited
		}
	}
}

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	f()
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
