package lint

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"blogbuilder/internal/foundation"
)

// Linter applies a rule set to every Markdown document under a directory.
type Linter struct {
	rules []Rule
}

// NewLinter builds a Linter; a nil rule slice means DefaultRules.
func NewLinter(rules []Rule) *Linter {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Linter{rules: rules}
}

// Run walks contentDir the same way the site loader does and checks each
// document. Issues are ordered by file path.
func (l *Linter) Run(contentDir string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		hidden := strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
		if d.IsDir() {
			if hidden && path != contentDir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if hidden || (ext != ".md" && ext != ".markdown") {
			return nil
		}

		// #nosec G304 -- paths come from the directory walk.
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		result.FilesTotal++
		for _, rule := range l.rules {
			result.Issues = append(result.Issues, rule.Check(path, content)...)
		}
		return nil
	})
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeFilesystem, "lint walk failed").
			WithContext("dir", contentDir).
			Build()
	}

	sort.SliceStable(result.Issues, func(i, j int) bool {
		if result.Issues[i].FilePath != result.Issues[j].FilePath {
			return result.Issues[i].FilePath < result.Issues[j].FilePath
		}
		return result.Issues[i].Line < result.Issues[j].Line
	})
	return result, nil
}
