package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/renderer"
	"github.com/etnz/endgame/survival"
	"github.com/google/subcommands"
)

// survivalCmd holds the flags for the 'survival' subcommand.
type survivalCmd struct {
	table string
	dir   string
	sex   string
	birth string
	from  int
	to    int
	ages  bool
}

func (*survivalCmd) Name() string     { return "survival" }
func (*survivalCmd) Synopsis() string { return "print survival chances from a mortality table" }
func (*survivalCmd) Usage() string {
	return `endgame survival (-table <file> | -dir <dir> -sex <sex>) -birth <date> [-from <year>] [-to <year>]
endgame survival (-table <file> | -dir <dir> -sex <sex>) -ages -from <age> -to <age>

  Print the chances to be alive at the end of each year, having been
  alive at the start of the first one. With -ages, print the chances to
  reach every fifth age from each starting age.
`
}

func (c *survivalCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.table, "table", "", "Mortality table file.")
	f.StringVar(&c.dir, "dir", "", "Directory of the male-lx.utf8 and female-lx.utf8 tables.")
	f.StringVar(&c.sex, "sex", "", "male or female, to pick the table of -dir.")
	f.StringVar(&c.birth, "birth", "", "Date of birth, YYYY-MM-DD.")
	f.IntVar(&c.from, "from", date.Today().Year(), "First year, or first age with -ages.")
	f.IntVar(&c.to, "to", 0, "Last year, or last age with -ages. Defaults to 30 years after -from.")
	f.BoolVar(&c.ages, "ages", false, "Print the chances between ages.")
}

func (c *survivalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	table, sex, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.to == 0 {
		c.to = c.from + 30
	}

	var md string
	if c.ages {
		md, err = renderer.AgeTableMarkdown(table, c.from, min(c.to, table.MaxAge()-1))
	} else {
		var birth date.Date
		if birth, err = date.Parse(c.birth); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -birth: %v\n", err)
			return subcommands.ExitUsageError
		}
		md, err = renderer.SurvivalMarkdown(table, sex, birth, c.from, c.to)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *survivalCmd) load() (*survival.Table, survival.Sex, error) {
	var sex survival.Sex
	if c.sex != "" {
		var err error
		if sex, err = survival.ParseSex(c.sex); err != nil {
			return nil, 0, err
		}
	}
	switch {
	case c.table != "":
		t, err := survival.Load(c.table)
		return t, sex, err
	case c.dir != "" && sex != 0:
		t, err := survival.LoadFor(c.dir, sex)
		return t, sex, err
	}
	return nil, 0, fmt.Errorf("either -table, or -dir and -sex, are required")
}
