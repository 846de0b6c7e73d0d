package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/endgame/config"
	"github.com/etnz/endgame/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `syntax-version = "1"
description = "minimal"
birth = "1955-06-01"
start-year = 2025
end-year = 2026

[bank]
cash = "1000"
small-balance-limit = "100"

[federal]
personal-amount = "14000"
age-amount = "8000"
age-amount-threshold = "40000"
brackets = [{ rate = "15%", max = "50000" }, { rate = "26%", max = "1000000" }]
withholding = [{ rate = "10%", max = "1000000" }]

[[transactions]]
kind = "annuity"
when = "on *-15"
amount = "1000"
`

// execute runs a subcommand the way the commander does.
func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c.Execute(context.Background(), f)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.toml", scenario)
	bad := writeFile(t, dir, "bad.toml", "syntax-version = \"42\"\n")

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &checkCmd{}, good))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &checkCmd{}, good, bad))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &checkCmd{}))
}

func TestRunReportQuery(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "201-minimal.toml", scenario)
	out := filepath.Join(dir, "out")
	t.Setenv("LOG_LEVEL", "warn")

	require.Equal(t, subcommands.ExitSuccess, execute(t, &runCmd{}, "-q", "-o", out, path))
	assert.FileExists(t, filepath.Join(out, "201-metrics.prom"))
	assert.FileExists(t, filepath.Join(out, "201-report.md"))

	jsonPath := filepath.Join(out, renderer.JSONName("201"))
	r, err := renderer.ReadReportFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "minimal", r.Description)
	require.NotNil(t, r.Single())
	assert.Len(t, r.Single().Years, 2)
	assert.NotEmpty(t, r.ID)

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &reportCmd{}, "-format", "raw", jsonPath))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &reportCmd{}, "-format", "html", jsonPath))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &reportCmd{}, "-format", "pdf", jsonPath))

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &queryCmd{}, "-c", jsonPath, "$.histories[0].years[0].year"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &queryCmd{}, jsonPath, "$.nowhere"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &queryCmd{}, jsonPath))
}

func TestRunMissingScenario(t *testing.T) {
	t.Setenv("ENDGAME_OUTPUT", t.TempDir())
	assert.Equal(t, subcommands.ExitFailure, execute(t, &runCmd{}, filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &runCmd{}))
}

func TestSurvival(t *testing.T) {
	table := writeFile(t, t.TempDir(), "lx.utf8", "\"70 years\",\"1000\"\n\"71 years\",\"900\"\n\"72 years\",\"450\"\n\"80 years and over\",\"0\"\n")

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &survivalCmd{}, "-table", table, "-birth", "1955-06-01", "-from", "2025", "-to", "2027"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &survivalCmd{}, "-table", table, "-birth", "June"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &survivalCmd{}, "-sex", "other", "-table", table))
}

func TestTopic(t *testing.T) {
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &topicCmd{}, "-raw"))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &topicCmd{}, "-raw", "scenario", "query"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &topicCmd{}, "nope"))
}

func TestAskNeedsReport(t *testing.T) {
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &askCmd{}))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &askCmd{}, filepath.Join(t.TempDir(), "missing.json")))
}

func TestNewLogger(t *testing.T) {
	defer func(old string) { *logFormat = old }(*logFormat)

	*logFormat = "json"
	log, err := newLogger(config.Env{LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	*logFormat = "text"
	log, err = newLogger(config.Env{LogLevel: "info"})
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	_, err = newLogger(config.Env{LogLevel: "loud"})
	assert.Error(t, err)

	*logFormat = "xml"
	_, err = newLogger(config.Env{LogLevel: "info"})
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range []string{"run", "check", "survival", "report", "query", "ask", "topic"} {
		assert.Contains(t, c.Sub, name)
	}
	assert.Contains(t, c.Sub["report"].Flags, "format")
}
