// Package scenario runs declarative scope scripts against the unwind
// generator. A script declares types and values, then an ordered list
// of operations (push, schedule, pop_emit, landing_pad, exit_chain,
// block); running it produces the generated function and the handles
// each operation returned. Scripts drive both the CLI and the heavier
// integration tests.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"ember/internal/types"
)

// Script is the TOML shape of one scenario.
type Script struct {
	Name   string     `toml:"name"`
	Func   string     `toml:"func"`
	Target string     `toml:"target"`
	Types  []TypeDecl `toml:"types"`
	Values []ValueDef `toml:"values"`
	Ops    []Op       `toml:"ops"`
}

// TypeDecl declares a named struct or union. Field types are builtin
// names, previously declared names, or the prefixed forms "own:T" and
// "ref:T".
type TypeDecl struct {
	Name     string     `toml:"name"`
	Kind     string     `toml:"kind"` // struct | union
	Dtor     bool       `toml:"dtor"`
	Fields   []string   `toml:"fields"`   // struct field types
	Variants [][]string `toml:"variants"` // union variant field types
}

// ValueDef declares one local value.
type ValueDef struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Op is one scripted operation.
type Op struct {
	Op     string `toml:"op"`
	Scope  int64  `toml:"scope"`
	Value  string `toml:"value"`
	Name   string `toml:"name"`
	Term   string `toml:"term"`
	Target string `toml:"target"`
}

// LoadFile reads and parses a scenario script.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	if s.Func == "" {
		s.Func = "scenario"
	}
	return &s, nil
}

// typeTable resolves script type names against an interner.
type typeTable struct {
	in     *types.Interner
	byName map[string]types.TypeID
}

func newTypeTable(in *types.Interner) *typeTable {
	b := in.Builtins()
	return &typeTable{
		in: in,
		byName: map[string]types.TypeID{
			"unit":   b.Unit,
			"bool":   b.Bool,
			"int":    b.Int,
			"uint":   b.Uint,
			"float":  b.Float,
			"string": b.String,
		},
	}
}

func (t *typeTable) resolve(name string) (types.TypeID, error) {
	if id, ok := t.byName[name]; ok {
		return id, nil
	}
	if rest, ok := strings.CutPrefix(name, "own:"); ok {
		elem, err := t.resolve(rest)
		if err != nil {
			return types.NoTypeID, err
		}
		id := t.in.Intern(types.MakeOwn(elem))
		t.byName[name] = id
		return id, nil
	}
	if rest, ok := strings.CutPrefix(name, "ref:"); ok {
		elem, err := t.resolve(rest)
		if err != nil {
			return types.NoTypeID, err
		}
		id := t.in.Intern(types.MakeRef(elem))
		t.byName[name] = id
		return id, nil
	}
	return types.NoTypeID, fmt.Errorf("scenario: unknown type %q", name)
}

func (t *typeTable) declare(decls []TypeDecl) error {
	for _, d := range decls {
		if d.Name == "" {
			return fmt.Errorf("scenario: type declaration without a name")
		}
		if _, exists := t.byName[d.Name]; exists {
			return fmt.Errorf("scenario: duplicate type %q", d.Name)
		}
		switch d.Kind {
		case "", "struct":
			info := types.StructInfo{Name: d.Name, HasDtor: d.Dtor}
			for i, ft := range d.Fields {
				id, err := t.resolve(ft)
				if err != nil {
					return err
				}
				info.Fields = append(info.Fields, types.Field{
					Name: fmt.Sprintf("f%d", i),
					Type: id,
				})
			}
			t.byName[d.Name] = t.in.DeclareStruct(info)
		case "union":
			info := types.UnionInfo{Name: d.Name, HasDtor: d.Dtor}
			for vi, variant := range d.Variants {
				v := types.Variant{Name: fmt.Sprintf("v%d", vi)}
				for fi, ft := range variant {
					id, err := t.resolve(ft)
					if err != nil {
						return err
					}
					v.Fields = append(v.Fields, types.Field{
						Name: fmt.Sprintf("f%d", fi),
						Type: id,
					})
				}
				info.Variants = append(info.Variants, v)
			}
			t.byName[d.Name] = t.in.DeclareUnion(info)
		default:
			return fmt.Errorf("scenario: type %q: invalid kind %q (expected: struct|union)", d.Name, d.Kind)
		}
	}
	return nil
}
