package ir_test

import (
	"strings"
	"testing"

	"ember/internal/ir"
)

func returnFunc(name string) *ir.Func {
	return &ir.Func{
		Name: name,
		Blocks: []ir.Block{{
			ID:   0,
			Name: "entry0",
			Term: ir.Terminator{Kind: ir.TermReturn},
		}},
	}
}

func TestValidateFuncOK(t *testing.T) {
	f := returnFunc("ok")
	f.Locals = append(f.Locals, ir.Local{Name: "x"})
	f.Blocks[0].Instrs = append(f.Blocks[0].Instrs,
		ir.Instr{Kind: ir.InstrLoadLocal, Result: 0, LoadLocal: ir.LoadLocalInstr{Local: 0}},
		ir.Instr{Kind: ir.InstrStoreLocal, Result: ir.NoValueID, StoreLocal: ir.StoreLocalInstr{Local: 0, Val: 0}},
	)
	if err := ir.ValidateFunc(f); err != nil {
		t.Fatalf("ValidateFunc: %v", err)
	}
}

func TestValidateFuncFlaws(t *testing.T) {
	cases := []struct {
		name string
		mut  func(f *ir.Func)
		want string
	}{
		{
			name: "unterminated block",
			mut: func(f *ir.Func) {
				f.Blocks = append(f.Blocks, ir.Block{ID: 1, Name: "dangling0"})
			},
			want: "unterminated",
		},
		{
			name: "goto to missing block",
			mut: func(f *ir.Func) {
				f.Blocks[0].Term = ir.Terminator{Kind: ir.TermGoto, Goto: ir.GotoTerm{Target: 9}}
			},
			want: "goto target",
		},
		{
			name: "cleanupret to missing block",
			mut: func(f *ir.Func) {
				f.Blocks[0].Instrs = append(f.Blocks[0].Instrs,
					ir.Instr{Kind: ir.InstrCleanupPad, Result: 0})
				f.Blocks[0].Term = ir.Terminator{
					Kind:       ir.TermCleanupRet,
					CleanupRet: ir.CleanupRetTerm{Pad: 0, Target: 9},
				}
			},
			want: "cleanupret target",
		},
		{
			name: "unknown local",
			mut: func(f *ir.Func) {
				f.Blocks[0].Instrs = append(f.Blocks[0].Instrs,
					ir.Instr{Kind: ir.InstrLoadLocal, Result: 0, LoadLocal: ir.LoadLocalInstr{Local: 5}})
			},
			want: "unknown local",
		},
		{
			name: "undefined value",
			mut: func(f *ir.Func) {
				f.Blocks[0].Instrs = append(f.Blocks[0].Instrs,
					ir.Instr{Kind: ir.InstrExtractValue, Result: 1, Extract: ir.ExtractValueInstr{Agg: 7}})
			},
			want: "undefined value",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := returnFunc("bad")
			tc.mut(f)
			err := ir.ValidateFunc(f)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateCleanupRetToCaller(t *testing.T) {
	f := returnFunc("resume")
	f.Blocks[0].Instrs = append(f.Blocks[0].Instrs, ir.Instr{Kind: ir.InstrCleanupPad, Result: 0})
	f.Blocks[0].Term = ir.Terminator{
		Kind:       ir.TermCleanupRet,
		CleanupRet: ir.CleanupRetTerm{Pad: 0, Target: ir.NoBlockID},
	}
	if err := ir.ValidateFunc(f); err != nil {
		t.Fatalf("cleanupret to caller must be valid: %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := ir.NewModule()
	f := returnFunc("main")
	f.Personality = "ember_eh_personality"
	f.Locals = append(f.Locals, ir.Local{Name: "w", Type: 3})
	m.Add(f)

	data, err := ir.Snapshot(m)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	back, err := ir.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	id, ok := back.FuncByName["main"]
	if !ok {
		t.Fatalf("decoded module lost function main")
	}
	got := back.Funcs[id]
	if got.Personality != f.Personality || len(got.Blocks) != 1 || len(got.Locals) != 1 {
		t.Fatalf("round trip mangled function: %+v", got)
	}
	if got.Blocks[0].Term.Kind != ir.TermReturn {
		t.Fatalf("round trip lost terminator: %+v", got.Blocks[0].Term)
	}

	if _, err := ir.DecodeSnapshot([]byte("not a snapshot")); err == nil {
		t.Fatalf("garbage snapshot must not decode")
	}
}
