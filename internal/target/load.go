package target

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// fileSpec mirrors the TOML shape of a custom target description.
// Fields left empty inherit from the base preset.
type fileSpec struct {
	Triple             string `toml:"triple"`
	Base               string `toml:"base"`
	Exceptions         string `toml:"exceptions"`
	Personality        string `toml:"personality"`
	UnwindResume       string `toml:"unwind_resume"`
	ExplicitResumeCall *bool  `toml:"explicit_resume_call"`
}

// Load reads a custom target description from a TOML file. The file
// may name a preset via `base`; unset fields inherit from it.
func Load(path string) (*Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target: reading %s: %w", path, err)
	}
	var spec fileSpec
	if err := toml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("target: parsing %s: %w", path, err)
	}

	base := Target{Triple: spec.Triple}
	if spec.Base != "" {
		t, err := ByTriple(spec.Base)
		if err != nil {
			return nil, fmt.Errorf("target: %s: %w", path, err)
		}
		base = *t
	}
	if spec.Triple != "" {
		base.Triple = spec.Triple
	}
	if base.Triple == "" {
		return nil, fmt.Errorf("target: %s: missing triple", path)
	}
	if spec.Exceptions != "" {
		switch spec.Exceptions {
		case "table":
			base.Exceptions = ModelTable
		case "funclet":
			base.Exceptions = ModelFunclet
		default:
			return nil, fmt.Errorf("target: %s: invalid exceptions model %q (expected: table|funclet)", path, spec.Exceptions)
		}
	}
	if spec.Personality != "" {
		base.Personality = spec.Personality
	}
	if spec.UnwindResume != "" {
		base.UnwindResume = spec.UnwindResume
	}
	if spec.ExplicitResumeCall != nil {
		base.ExplicitResumeCall = *spec.ExplicitResumeCall
	}
	return &base, nil
}
