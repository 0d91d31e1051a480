package ir

import (
	"errors"
	"fmt"
)

// Validate checks structural invariants of a module.
// Returns an error if any invariant is violated.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := ValidateFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks structural invariants of one function:
// every block is terminated, branch targets exist, locals referenced by
// instructions exist, and values are produced before they are consumed.
func ValidateFunc(f *Func) error {
	if f == nil {
		return nil
	}
	var errs []error
	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocals(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateValues(f); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

func validateBlockTargets(f *Func) error {
	var errs []error

	blockExists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		switch bb.Term.Kind {
		case TermGoto:
			if !blockExists(bb.Term.Goto.Target) {
				errs = append(errs, fmt.Errorf("bb%d: goto target bb%d does not exist", i, bb.Term.Goto.Target))
			}
		case TermCleanupRet:
			if t := bb.Term.CleanupRet.Target; t != NoBlockID && !blockExists(t) {
				errs = append(errs, fmt.Errorf("bb%d: cleanupret target bb%d does not exist", i, t))
			}
		}
	}
	return errors.Join(errs...)
}

func validateLocals(f *Func) error {
	var errs []error

	localExists := func(id LocalID) bool {
		return id >= 0 && int(id) < len(f.Locals)
	}

	for i := range f.Blocks {
		for j := range f.Blocks[i].Instrs {
			ins := &f.Blocks[i].Instrs[j]
			switch ins.Kind {
			case InstrLoadLocal:
				if !localExists(ins.LoadLocal.Local) {
					errs = append(errs, fmt.Errorf("bb%d: load of unknown local L%d", i, ins.LoadLocal.Local))
				}
			case InstrStoreLocal:
				if !localExists(ins.StoreLocal.Local) {
					errs = append(errs, fmt.Errorf("bb%d: store to unknown local L%d", i, ins.StoreLocal.Local))
				}
			case InstrCall:
				for _, a := range ins.Call.Args {
					if a.Kind == ArgLocalAddr && !localExists(a.Local) {
						errs = append(errs, fmt.Errorf("bb%d: call argument references unknown local L%d", i, a.Local))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

// validateValues checks that every consumed ValueID was produced by some
// instruction in the function. Dominance is not checked; the builder
// emits strictly forward within a block.
func validateValues(f *Func) error {
	produced := make(map[ValueID]bool)
	for i := range f.Blocks {
		for j := range f.Blocks[i].Instrs {
			if r := f.Blocks[i].Instrs[j].Result; r != NoValueID {
				produced[r] = true
			}
		}
	}

	var errs []error
	use := func(bbIdx int, what string, v ValueID) {
		if v != NoValueID && !produced[v] {
			errs = append(errs, fmt.Errorf("bb%d: %s consumes undefined value %%%d", bbIdx, what, v))
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			switch ins.Kind {
			case InstrCall:
				for _, a := range ins.Call.Args {
					if a.Kind == ArgValue {
						use(i, "call", a.Val)
					}
				}
				if ins.Call.Funclet.Kind == FuncletMSVC {
					use(i, "call funclet", ins.Call.Funclet.Pad)
				}
			case InstrStoreLocal:
				use(i, "store", ins.StoreLocal.Val)
			case InstrExtractValue:
				use(i, "extractvalue", ins.Extract.Agg)
			}
		}
		switch bb.Term.Kind {
		case TermResume:
			use(i, "resume", bb.Term.Resume.Exc)
		case TermCleanupRet:
			use(i, "cleanupret", bb.Term.CleanupRet.Pad)
		}
	}
	return errors.Join(errs...)
}
