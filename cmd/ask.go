package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/endgame/advisor"
	"github.com/etnz/endgame/config"
	"github.com/etnz/endgame/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// askCmd holds the flags for the 'ask' subcommand.
type askCmd struct {
	interactive bool
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "ask a Gemini model about a run report" }
func (*askCmd) Usage() string {
	return `endgame ask [-i] <report.json> [<question>]

  Ask about a run report. Needs GEMINI_API_KEY. With -i, or without a
  question, keep on reading questions from the standard input.
`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Keep the session open after the question.")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: ask needs a report file")
		return subcommands.ExitUsageError
	}
	report, err := renderer.ReadReportFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	log, err := newLogger(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	a := advisor.New(os.Stdout, os.Stdin, report).WithLogger(log)

	question := strings.Join(f.Args()[1:], " ")
	if question != "" && !c.interactive {
		answer, err := a.Ask(ctx, client, question)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Advisor failed:", err)
			return subcommands.ExitFailure
		}
		printMarkdown(answer)
		return subcommands.ExitSuccess
	}
	if err := a.Run(ctx, client, printMarkdown, question); err != nil {
		fmt.Fprintln(os.Stderr, "Advisor failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
