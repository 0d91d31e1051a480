// Package langitems validates that the runtime items unwinding and
// panicking depend on are present before producing a linkable output.
// Unlike the unwind core, whose failures are internal-consistency
// panics, everything here is a genuine user-facing diagnostic.
package langitems

import (
	"fmt"

	"ember/internal/diag"
	"ember/internal/target"
)

// Item enumerates the weak language items.
type Item uint8

const (
	// ItemEHPersonality is the exception-personality routine.
	ItemEHPersonality Item = iota
	// ItemEHUnwindResume continues unwinding on targets without a
	// resume primitive.
	ItemEHUnwindResume
	// ItemPanicImpl is the panic handler.
	ItemPanicImpl
)

var itemNames = map[Item]string{
	ItemEHPersonality:  "eh_personality",
	ItemEHUnwindResume: "eh_unwind_resume",
	ItemPanicImpl:      "panic_impl",
}

var itemsByName = map[string]Item{
	"eh_personality":   ItemEHPersonality,
	"eh_unwind_resume": ItemEHUnwindResume,
	"panic_impl":       ItemPanicImpl,
}

func (i Item) String() string {
	if n, ok := itemNames[i]; ok {
		return n
	}
	return fmt.Sprintf("Item(%d)", i)
}

// OutputKind is what the compilation produces.
type OutputKind uint8

const (
	// OutputExe is an executable.
	OutputExe OutputKind = iota
	// OutputStaticLib is a fully linked static library.
	OutputStaticLib
	// OutputDynLib is a dynamic library.
	OutputDynLib
	// OutputRlib is an intermediate library; missing items are the
	// final link's problem, so no check is needed.
	OutputRlib
)

// Input describes one compilation for checking.
type Input struct {
	Target  *target.Target
	Outputs []OutputKind

	// Defined holds the language-item names this compilation (or its
	// dependencies) provides.
	Defined map[string]bool

	// ExternalDecls lists language-item names claimed by external
	// declarations, checked against the known set.
	ExternalDecls []string
}

// Check reports a diagnostic for every required-but-missing language
// item and for every unknown external item declaration.
func Check(bag *diag.Bag, in Input) {
	for _, name := range in.ExternalDecls {
		if _, ok := itemsByName[name]; !ok {
			bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.CodeUnknownLangItem,
				Message:  fmt.Sprintf("unknown external language item: `%s`", name),
				Subject:  name,
			})
		}
	}

	if !needsCheck(in.Outputs) {
		return
	}

	for _, item := range requiredItems(in.Target) {
		name := itemNames[item]
		if in.Defined[name] {
			continue
		}
		msg := fmt.Sprintf("language item required, but not found: `%s`", name)
		if item == ItemPanicImpl {
			msg = "panic handler function required, but not found"
		}
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.CodeMissingLangItem,
			Message:  msg,
			Subject:  name,
		})
	}
}

// needsCheck reports whether any produced output links a full program
// or library. Intermediate libraries defer the check.
func needsCheck(outputs []OutputKind) bool {
	for _, k := range outputs {
		switch k {
		case OutputExe, OutputStaticLib, OutputDynLib:
			return true
		}
	}
	return false
}

func requiredItems(tgt *target.Target) []Item {
	items := []Item{ItemEHPersonality, ItemPanicImpl}
	if tgt != nil && tgt.ExplicitResumeCall {
		items = append(items, ItemEHUnwindResume)
	}
	return items
}
