package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ember/internal/diag"
	"ember/internal/langitems"
	"ember/internal/target"
)

var (
	checkOutputs []string
	checkDefined []string
	checkExterns []string
)

func init() {
	checkCmd.Flags().StringSliceVar(&checkOutputs, "output", []string{"exe"}, "output kinds produced (exe|staticlib|dynlib|rlib)")
	checkCmd.Flags().StringSliceVar(&checkDefined, "define", nil, "language items the compilation defines")
	checkCmd.Flags().StringSliceVar(&checkExterns, "extern", nil, "language items claimed by external declarations")
	checkCmd.Flags().StringVar(&runTargetTriple, "target", target.Default, "target triple to check for")
	checkCmd.Flags().StringVar(&runTargetFile, "target-file", "", "custom target description (toml), overrides --target")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the language items unwinding depends on are present",
	RunE:  checkExecution,
}

func checkExecution(cmd *cobra.Command, args []string) error {
	setupColor(cmd)

	tgt, err := resolveTarget()
	if err != nil {
		return err
	}

	outputs := make([]langitems.OutputKind, 0, len(checkOutputs))
	for _, o := range checkOutputs {
		switch o {
		case "exe":
			outputs = append(outputs, langitems.OutputExe)
		case "staticlib":
			outputs = append(outputs, langitems.OutputStaticLib)
		case "dynlib":
			outputs = append(outputs, langitems.OutputDynLib)
		case "rlib":
			outputs = append(outputs, langitems.OutputRlib)
		default:
			return fmt.Errorf("invalid output kind %q (expected: exe|staticlib|dynlib|rlib)", o)
		}
	}

	defined := make(map[string]bool, len(checkDefined))
	for _, d := range checkDefined {
		defined[d] = true
	}

	bag := diag.NewBag(64)
	langitems.Check(bag, langitems.Input{
		Target:        tgt,
		Outputs:       outputs,
		Defined:       defined,
		ExternalDecls: checkExterns,
	})
	bag.Sort()

	out := cmd.OutOrStdout()
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)
	for _, d := range bag.Items() {
		c := warnColor
		if d.Severity >= diag.SevError {
			c = errColor
		}
		fmt.Fprintf(out, "%s[%s]: %s\n", c.Sprint(d.Severity), d.Code, d.Message)
	}

	if bag.HasErrors() {
		return fmt.Errorf("%d language item problems on %s", bag.Len(), tgt.Triple)
	}
	fmt.Fprintf(out, "ok: all required language items present on %s\n", tgt.Triple)
	return nil
}
