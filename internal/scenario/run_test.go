package scenario_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ember/internal/ir"
	"ember/internal/scenario"
	"ember/internal/target"
)

func linuxTarget(t *testing.T) *target.Target {
	t.Helper()
	tgt, err := target.ByTriple("x86_64-linux-gnu")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	return tgt
}

func TestRunBasicScript(t *testing.T) {
	s := &scenario.Script{
		Name: "basic",
		Func: "demo",
		Types: []scenario.TypeDecl{
			{Name: "Widget", Kind: "struct", Dtor: true},
		},
		Values: []scenario.ValueDef{
			{Name: "w", Type: "Widget"},
			{Name: "s", Type: "string"},
		},
		Ops: []scenario.Op{
			{Op: "push"},
			{Op: "schedule", Scope: 0, Value: "w"},
			{Op: "schedule", Scope: 0, Value: "s"},
			{Op: "landing_pad"},
			{Op: "pop_emit", Scope: 0},
		},
	}

	res, err := scenario.Run(s, linuxTarget(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := ir.ValidateFunc(res.Fn); err != nil {
		t.Fatalf("generated function does not validate: %v", err)
	}
	if res.Fn.Name != "demo" {
		t.Fatalf("function name = %q", res.Fn.Name)
	}
	if len(res.Ops) != len(s.Ops) {
		t.Fatalf("op results = %d, want %d", len(res.Ops), len(s.Ops))
	}
	if res.Ops[0].Scope != 0 {
		t.Fatalf("push returned scope %d", res.Ops[0].Scope)
	}
	if res.Ops[3].Block == ir.NoBlockID {
		t.Fatalf("landing_pad returned no block")
	}
	if res.Fn.Personality == "" {
		t.Fatalf("landing pad did not set the personality")
	}
}

func TestRunExitChainToNamedBlock(t *testing.T) {
	s := &scenario.Script{
		Types:  []scenario.TypeDecl{{Name: "Widget", Dtor: true}},
		Values: []scenario.ValueDef{{Name: "w", Type: "own:int"}},
		Ops: []scenario.Op{
			{Op: "block", Name: "out", Term: "return"},
			{Op: "push"},
			{Op: "schedule", Scope: 0, Value: "w"},
			{Op: "exit_chain", Target: "out"},
			{Op: "pop_emit", Scope: 0},
		},
	}
	res, err := scenario.Run(s, linuxTarget(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := ir.ValidateFunc(res.Fn); err != nil {
		t.Fatalf("generated function does not validate: %v", err)
	}

	chain := res.Ops[3].Block
	out := res.Blocks["out"]
	b := res.Fn.Block(chain)
	if b.Term.Kind != ir.TermGoto || b.Term.Goto.Target != out {
		t.Fatalf("chain does not branch to the named block: %v", b.Term)
	}
}

func TestRunScriptMistakesAreErrors(t *testing.T) {
	cases := []struct {
		name string
		s    *scenario.Script
		want string
	}{
		{
			name: "unknown value",
			s: &scenario.Script{
				Ops: []scenario.Op{{Op: "push"}, {Op: "schedule", Scope: 0, Value: "ghost"}},
			},
			want: "unknown value",
		},
		{
			name: "scope not open",
			s: &scenario.Script{
				Values: []scenario.ValueDef{{Name: "w", Type: "string"}},
				Ops:    []scenario.Op{{Op: "schedule", Scope: 2, Value: "w"}},
			},
			want: "not open",
		},
		{
			name: "pop below top",
			s: &scenario.Script{
				Ops: []scenario.Op{{Op: "push"}, {Op: "push"}, {Op: "pop_emit", Scope: 0}},
			},
			want: "not the top",
		},
		{
			name: "unknown op",
			s: &scenario.Script{
				Ops: []scenario.Op{{Op: "warp"}},
			},
			want: "unknown op",
		},
		{
			name: "unknown field type",
			s: &scenario.Script{
				Types: []scenario.TypeDecl{{Name: "Bad", Fields: []string{"gadget"}}},
			},
			want: "unknown type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scenario.Run(tc.s, linuxTarget(t), zerolog.Nop())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop_order.toml")
	body := `
name = "drop order"
func = "drop_order"

[[types]]
name = "Widget"
kind = "struct"
dtor = true

[[values]]
name = "w"
type = "Widget"

[[ops]]
op = "push"

[[ops]]
op = "schedule"
scope = 0
value = "w"

[[ops]]
op = "pop_emit"
scope = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := scenario.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Name != "drop order" || s.Func != "drop_order" {
		t.Fatalf("parsed header wrong: %+v", s)
	}
	if len(s.Types) != 1 || len(s.Values) != 1 || len(s.Ops) != 3 {
		t.Fatalf("parsed shapes wrong: %+v", s)
	}

	res, err := scenario.Run(s, linuxTarget(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := ir.ValidateFunc(res.Fn); err != nil {
		t.Fatalf("generated function does not validate: %v", err)
	}
}
