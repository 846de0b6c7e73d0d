// Package cmd implements the endgame command line: running scenarios and
// reading their reports.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/endgame/config"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "simulation")
	c.Register(&checkCmd{}, "simulation")
	c.Register(&survivalCmd{}, "simulation")

	c.Register(&reportCmd{}, "reports")
	c.Register(&queryCmd{}, "reports")
	c.Register(&askCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var logFormat = flag.String("log-format", "text", "Log format, text or json. The level is read from LOG_LEVEL.")

// newLogger returns the logger of a command, set up from the environment.
func newLogger(env config.Env) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(env.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	switch strings.ToLower(*logFormat) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", *logFormat)
	}
	return log, nil
}

// printMarkdown renders md for the terminal, or prints it as is when it
// cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
