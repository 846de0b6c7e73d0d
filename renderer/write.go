package renderer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// JSONName is the name of the report file read back by ReadReportFile.
func JSONName(prefix string) string { return prefix + "-report.json" }

type output struct {
	name  string
	write func(io.Writer) error
}

// WriteAll writes every report format of r into dir, creating it when
// needed, and returns the paths written.
func WriteAll(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	md := RenderRun(r, RenderOptions{})
	files := []output{
		{JSONName(r.Prefix()), r.WriteJSON},
		{r.Prefix() + "-report.md", func(w io.Writer) error {
			_, err := io.WriteString(w, md)
			return err
		}},
		{r.Prefix() + "-report.html", func(w io.Writer) error {
			page, err := HTML(newRunView(r).Title, md)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, page)
			return err
		}},
		{r.Prefix() + "-report.xlsx", func(w io.Writer) error { return WriteXLSX(w, r) }},
		{r.Prefix() + "-report.pdf", func(w io.Writer) error { return WritePDF(w, r) }},
	}
	if len(r.Spreads(NetWorth)) >= 2 {
		files = append(files, output{r.Prefix() + "-net-worth.png", func(w io.Writer) error { return WriteNetWorthChart(w, r) }})
	}

	var paths []string
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf); err != nil {
			return paths, fmt.Errorf("rendering %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	csvs, err := WriteCSV(dir, r)
	return append(paths, csvs...), err
}

// ReadReportFile reads a report written by WriteAll.
func ReadReportFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReport(f)
}
