package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/endgame/config"
	"github.com/etnz/endgame/renderer"
	"github.com/etnz/endgame/sim"
	"github.com/google/subcommands"
	"github.com/google/uuid"
)

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	output     string
	iterations int
	isolate    bool
	quiet      bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a scenario and write its reports" }
func (*runCmd) Usage() string {
	return `endgame run [-o <dir>] [-iterations <n>] [-isolate] [-q] <scenario>

  Run a scenario file and write its reports, see 'endgame topic reports'.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Directory of the reports. Defaults to $ENDGAME_OUTPUT or 'reports'.")
	f.IntVar(&c.iterations, "iterations", 0, "Number of iterations. Overrides the scenario file.")
	f.BoolVar(&c.isolate, "isolate", false, "Carry on after a failed iteration. Overrides the scenario file.")
	f.BoolVar(&c.quiet, "q", false, "Do not print the summary.")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: run needs exactly one scenario file")
		return subcommands.ExitUsageError
	}
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.output == "" {
		c.output = env.Output
	}
	log, err := newLogger(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	path := f.Arg(0)
	file, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.iterations > 0 {
		file.Iterations = c.iterations
	}
	if c.isolate {
		file.Isolate = true
	}

	metrics := sim.NewMetrics()
	runner, err := file.Runner(log, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	runner.RunID = uuid.NewString()
	log.WithField("run", runner.RunID).WithField("scenario", path).Info("running")

	histories, runErr := runner.Run(ctx)
	report := renderer.NewReport(runner.RunID, path, file.Description, file.Birth, file.StartYear, file.EndYear, histories)

	paths, err := renderer.WriteAll(c.output, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing reports: %v\n", err)
		return subcommands.ExitFailure
	}
	metricsFile := filepath.Join(c.output, report.Prefix()+"-metrics.prom")
	if err := metrics.WriteToTextfile(metricsFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
		return subcommands.ExitFailure
	}
	paths = append(paths, metricsFile)
	for _, p := range paths {
		log.WithField("file", p).Debug("written")
	}

	if !c.quiet {
		printMarkdown(renderer.RenderRun(report, renderer.RenderOptions{SkipAccounts: true}))
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return subcommands.ExitFailure
	}
	fmt.Printf("Reports written to %s\n", c.output)
	return subcommands.ExitSuccess
}
