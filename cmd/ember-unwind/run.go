package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ember/internal/ir"
	"ember/internal/scenario"
	"ember/internal/target"
)

var (
	runTargetTriple string
	runTargetFile   string
	runEmitDir      string
	runJobs         int
)

func init() {
	runCmd.Flags().StringVar(&runTargetTriple, "target", target.Default, "target triple to generate for")
	runCmd.Flags().StringVar(&runTargetFile, "target-file", "", "custom target description (toml), overrides --target")
	runCmd.Flags().StringVar(&runEmitDir, "emit", "", "write msgpack snapshots of the generated functions to this directory")
	runCmd.Flags().IntVar(&runJobs, "jobs", 0, "number of scenarios to run in parallel (0 = number of CPUs)")
}

var runCmd = &cobra.Command{
	Use:   "run <scenario.toml>...",
	Short: "Run scope scenarios and dump the generated unwind CFG",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExecution,
}

type runResult struct {
	path string
	res  *scenario.Result
	err  error
}

func runExecution(cmd *cobra.Command, args []string) error {
	setupColor(cmd)

	tgt, err := resolveTarget()
	if err != nil {
		return err
	}

	log := zerolog.Nop()
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	jobs := runJobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]runResult, len(args))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			results[i] = runOne(path, tgt, log)
			return results[i].err
		})
	}
	runErr := g.Wait()

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.err != nil || r.res == nil {
			continue
		}
		fmt.Fprintf(out, "== %s (%s)\n", r.res.Script.Name, tgt.Triple)
		if err := ir.DumpFunc(out, r.res.Fn, r.res.Types); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if runErr != nil {
		return runErr
	}
	if runEmitDir != "" {
		return emitSnapshots(results)
	}
	return nil
}

func resolveTarget() (*target.Target, error) {
	if runTargetFile != "" {
		return target.Load(runTargetFile)
	}
	return target.ByTriple(runTargetTriple)
}

func runOne(path string, tgt *target.Target, log zerolog.Logger) runResult {
	script, err := scenario.LoadFile(path)
	if err != nil {
		return runResult{path: path, err: err}
	}
	res, err := scenario.Run(script, tgt, log.With().Str("scenario", script.Name).Logger())
	if err != nil {
		return runResult{path: path, err: fmt.Errorf("%s: %w", path, err)}
	}
	if err := ir.ValidateFunc(res.Fn); err != nil {
		return runResult{path: path, err: fmt.Errorf("%s: generated function is malformed: %w", path, err)}
	}
	return runResult{path: path, res: res}
}

func emitSnapshots(results []runResult) error {
	if err := os.MkdirAll(runEmitDir, 0o755); err != nil {
		return err
	}
	for _, r := range results {
		if r.res == nil {
			continue
		}
		m := ir.NewModule()
		m.Add(r.res.Fn)
		data, err := ir.Snapshot(m)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path)) + ".mp"
		if err := writeFileAtomic(filepath.Join(runEmitDir, name), data); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
