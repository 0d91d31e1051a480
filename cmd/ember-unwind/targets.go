package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ember/internal/target"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List built-in target presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupColor(cmd)
		out := cmd.OutOrStdout()
		tripleColor := color.New(color.FgCyan, color.Bold)
		for _, triple := range target.Triples() {
			t, err := target.ByTriple(triple)
			if err != nil {
				return err
			}
			marker := " "
			if triple == target.Default {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s exceptions=%s personality=%s", marker, tripleColor.Sprint(t.Triple), t.Exceptions, t.Personality)
			if t.ExplicitResumeCall {
				fmt.Fprintf(out, " resume=call:%s", t.UnwindResume)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}
