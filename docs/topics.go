// Package docs holds the help topics printed by `endgame topic`.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Index is the topic listing every other topic.
const Index = "readme"

// Topic returns the content of a documentation topic. "*" returns every
// topic, the index first.
func Topic(name string) (string, error) {
	if name == "*" {
		names, err := Names()
		if err != nil {
			return "", err
		}
		return Topics(append([]string{Index}, names...)...)
	}
	content, err := docs.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics returns the content of several topics concatenated together.
func Topics(names ...string) (string, error) {
	var b bytes.Buffer
	for _, name := range names {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Names returns the sorted names of the topics, the index excluded.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(docs, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if e.IsDir() || !ok || name == Index {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var indexLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

// Summaries maps the topics listed in the index to their one line summary.
func Summaries() (map[string]string, error) {
	content, err := docs.ReadFile(Index + ".md")
	if err != nil {
		return nil, err
	}
	res := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := indexLine.FindStringSubmatch(scanner.Text()); m != nil {
			res[strings.TrimSpace(m[1])] = m[2]
		}
	}
	return res, scanner.Err()
}
