package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/endgame/config"
	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate scenario files without running them" }
func (*checkCmd) Usage() string {
	return `endgame check <scenario>...

  Read each scenario file, its reference tables, and build its first
  iteration. Reports every invalid file.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: check needs at least one scenario file")
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		if err := check(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	return status
}

func check(path string) error {
	file, err := config.Load(path)
	if err != nil {
		return err
	}
	_, err = file.Check()
	return err
}
