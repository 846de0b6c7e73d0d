package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/endgame/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	format       string
	skipAccounts bool
	skipFailures bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the report of a run" }
func (*reportCmd) Usage() string {
	return `endgame report [-format md|html|raw] [-skip-accounts] [-skip-failures] <report.json>

  Print the summary of a run written by 'endgame run'.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "md", "Output format: md for the terminal, raw markdown, or html.")
	f.BoolVar(&c.skipAccounts, "skip-accounts", false, "Do not print the accounts at the end.")
	f.BoolVar(&c.skipFailures, "skip-failures", false, "Do not print the failed iterations.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: report needs exactly one report file")
		return subcommands.ExitUsageError
	}
	report, err := renderer.ReadReportFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md := renderer.RenderRun(report, renderer.RenderOptions{SkipAccounts: c.skipAccounts, SkipFailures: c.skipFailures})

	switch c.format {
	case "md":
		printMarkdown(md)
	case "raw":
		fmt.Print(md)
	case "html":
		page, err := renderer.HTML(report.Description, md)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(page)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}
