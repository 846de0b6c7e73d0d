package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderOptions holds configuration for rendering a run report.
type RenderOptions struct {
	SkipAccounts bool // Do not render the year-end accounts section.
	SkipFailures bool // Do not render the failed iterations.
}

// RenderRun renders a report to a markdown string. A one-iteration run
// shows its yearly details, a larger run shows the spread across
// iterations.
func RenderRun(r *Report, opts RenderOptions) string {
	partials := map[string]string{
		"run_title":    "run_title.md",
		"run_failures": "run_failures.md",
	}
	if r.Single() != nil {
		partials["run_body"] = "run_single.md"
	} else {
		partials["run_body"] = "run_spread.md"
	}
	if opts.SkipAccounts || r.Single() == nil {
		partials["run_accounts"] = ""
	} else {
		partials["run_accounts"] = "run_accounts.md"
	}
	// An empty file name results in an empty template.
	if opts.SkipFailures {
		partials["run_failures"] = ""
	}
	return renderTemplate("run", "run.md", partials, newRunView(r))
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
