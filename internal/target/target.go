// Package target describes the ABI facts the unwind code generator
// depends on: which exception protocol a triple uses, which personality
// routine anchors its landing pads, and how unwinding is resumed once a
// function's cleanups have run.
package target

import (
	"fmt"
	"sort"
)

// ExceptionModel selects the ABI-level unwinding protocol.
type ExceptionModel uint8

const (
	// ModelTable is the table-based (Itanium-style) protocol with
	// landing pads and a resume primitive.
	ModelTable ExceptionModel = iota
	// ModelFunclet is the funclet-based (MSVC-style) protocol with
	// cleanup pads and cleanup returns.
	ModelFunclet
)

func (m ExceptionModel) String() string {
	switch m {
	case ModelTable:
		return "table"
	case ModelFunclet:
		return "funclet"
	default:
		return fmt.Sprintf("ExceptionModel(%d)", m)
	}
}

// Target is one compilation target.
type Target struct {
	Triple     string
	Exceptions ExceptionModel

	// Personality is the exception-personality symbol attached to
	// functions that contain landing pads.
	Personality string

	// UnwindResume is the runtime entry point that continues unwinding
	// on targets where the resume primitive is unavailable.
	UnwindResume string

	// ExplicitResumeCall is set on targets where resuming must be an
	// explicit call to UnwindResume with the extracted exception
	// pointer instead of the resume primitive.
	ExplicitResumeCall bool
}

// WantsFuncletEH reports whether functions on this target use the
// funclet protocol for their unwinding blocks.
func (t *Target) WantsFuncletEH() bool {
	return t != nil && t.Exceptions == ModelFunclet
}

var presets = map[string]Target{
	"x86_64-linux-gnu": {
		Triple:       "x86_64-linux-gnu",
		Exceptions:   ModelTable,
		Personality:  "ember_eh_personality",
		UnwindResume: "ember_unwind_resume",
	},
	"x86_64-windows-msvc": {
		Triple:       "x86_64-windows-msvc",
		Exceptions:   ModelFunclet,
		Personality:  "__CxxFrameHandler3",
		UnwindResume: "ember_unwind_resume",
	},
	"x86_64-windows-gnu": {
		Triple:             "x86_64-windows-gnu",
		Exceptions:         ModelTable,
		Personality:        "ember_eh_personality",
		UnwindResume:       "ember_unwind_resume",
		ExplicitResumeCall: true,
	},
}

// Default is the triple assumed when nothing is configured.
const Default = "x86_64-linux-gnu"

// ByTriple returns the preset for a triple.
func ByTriple(triple string) (*Target, error) {
	t, ok := presets[triple]
	if !ok {
		return nil, fmt.Errorf("target: unknown triple %q", triple)
	}
	return &t, nil
}

// Triples returns all preset triples in sorted order.
func Triples() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
