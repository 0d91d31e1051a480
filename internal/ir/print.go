package ir

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"ember/internal/types"
)

// DumpModule writes a human-readable representation of a module.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner) error {
	if w == nil || m == nil {
		return nil
	}
	funcs := make([]*Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	slices.SortStableFunc(funcs, func(a, b *Func) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		return int(a.ID) - int(b.ID)
	})

	fmt.Fprintf(w, "funcs=%d\n", len(funcs))
	for _, f := range funcs {
		if err := DumpFunc(w, f, typesIn); err != nil {
			return err
		}
	}
	return nil
}

// DumpFunc writes a human-readable representation of one function.
func DumpFunc(w io.Writer, f *Func, typesIn *types.Interner) error {
	if w == nil || f == nil {
		return nil
	}
	fmt.Fprintf(w, "\nfn %s:\n", f.Name)
	if f.Personality != "" {
		fmt.Fprintf(w, "  personality %s\n", f.Personality)
	}

	if len(f.Locals) > 0 {
		fmt.Fprintf(w, "  locals:\n")
		for i := range f.Locals {
			l := f.Locals[i]
			name := l.Name
			if name == "" {
				name = "_"
			}
			fmt.Fprintf(w, "    L%d: %s name=%s\n", i, typeStr(typesIn, l.Type), name)
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		label := fmt.Sprintf("bb%d", bb.ID)
		if bb.Name != "" {
			label += " (" + bb.Name + ")"
		}
		if bb.Funclet.Kind != FuncletNone {
			label += " " + formatFunclet(bb.Funclet)
		}
		fmt.Fprintf(w, "  %s:\n", label)
		for j := range bb.Instrs {
			fmt.Fprintf(w, "    %s\n", formatInstr(&bb.Instrs[j]))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(&bb.Term))
	}
	return nil
}

func typeStr(in *types.Interner, id types.TypeID) string {
	if in == nil {
		return fmt.Sprintf("T%d", id)
	}
	return in.Name(id)
}

func formatFunclet(fl Funclet) string {
	switch fl.Kind {
	case FuncletGNU:
		return "[funclet gnu]"
	case FuncletMSVC:
		return fmt.Sprintf("[funclet %%%d]", fl.Pad)
	default:
		return ""
	}
}

func formatInstr(ins *Instr) string {
	res := ""
	if ins.Result != NoValueID {
		res = fmt.Sprintf("%%%d = ", ins.Result)
	}
	switch ins.Kind {
	case InstrCall:
		args := make([]string, 0, len(ins.Call.Args))
		for _, a := range ins.Call.Args {
			args = append(args, formatArg(a))
		}
		s := fmt.Sprintf("%scall %s(%s)", res, ins.Call.Callee, strings.Join(args, ", "))
		if ins.Call.Funclet.Kind != FuncletNone {
			s += " " + formatFunclet(ins.Call.Funclet)
		}
		return s
	case InstrLandingPad:
		return fmt.Sprintf("%slandingpad personality=%s cleanup=%t", res, ins.LandingPad.Personality, ins.LandingPad.Cleanup)
	case InstrCleanupPad:
		return res + "cleanuppad"
	case InstrLoadLocal:
		return fmt.Sprintf("%sload L%d", res, ins.LoadLocal.Local)
	case InstrStoreLocal:
		return fmt.Sprintf("store L%d, %%%d", ins.StoreLocal.Local, ins.StoreLocal.Val)
	case InstrExtractValue:
		return fmt.Sprintf("%sextractvalue %%%d, %d", res, ins.Extract.Agg, ins.Extract.Index)
	case InstrNop:
		return "nop"
	default:
		return fmt.Sprintf("instr(kind=%d)", ins.Kind)
	}
}

func formatArg(a Arg) string {
	if a.Kind == ArgLocalAddr {
		return fmt.Sprintf("&L%d", a.Local)
	}
	return fmt.Sprintf("%%%d", a.Val)
}

func formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermReturn:
		return "return"
	case TermResume:
		return fmt.Sprintf("resume %%%d", t.Resume.Exc)
	case TermCleanupRet:
		if t.CleanupRet.Target == NoBlockID {
			return fmt.Sprintf("cleanupret %%%d to caller", t.CleanupRet.Pad)
		}
		return fmt.Sprintf("cleanupret %%%d to bb%d", t.CleanupRet.Pad, t.CleanupRet.Target)
	case TermUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("term(kind=%d)", t.Kind)
	}
}
