// Package templates holds the embedded default layouts and loads user
// overrides from a layouts directory.
package templates

import (
	"embed"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"blogbuilder/internal/foundation"
)

//go:embed layouts/*.html
var defaults embed.FS

// Page names known to the set.
const (
	PageIndex = "index.html"
	PagePost  = "post.html"
	PageTag   = "tag.html"
	PageTags  = "tags.html"
)

// Set is a parsed template collection ready for rendering.
type Set struct {
	root *template.Template
}

var funcs = template.FuncMap{
	"longdate": func(t time.Time) string { return t.Format("January 2, 2006") },
	"isodate":  func(t time.Time) string { return t.Format("2006-01-02") },
}

// Load parses the embedded layouts, then overlays any same-named files from
// layoutsDir. An empty layoutsDir means embedded defaults only.
func Load(layoutsDir string) (*Set, error) {
	root, err := template.New("layouts").Funcs(funcs).ParseFS(defaults, "layouts/*.html")
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeInternal, "failed to parse embedded layouts").Build()
	}

	if layoutsDir != "" {
		overrides, err := filepath.Glob(filepath.Join(layoutsDir, "*.html"))
		if err != nil {
			return nil, err
		}
		for _, path := range overrides {
			// #nosec G304 -- layoutsDir comes from the site configuration.
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, foundation.WrapError(err, foundation.ErrorCodeFilesystem, "failed to read layout override").
					WithContext("path", path).
					Build()
			}
			name := filepath.Base(path)
			if _, err := root.New(name).Parse(string(raw)); err != nil {
				return nil, foundation.WrapError(err, foundation.ErrorCodeValidation, "invalid layout override").
					WithContext("path", path).
					Build()
			}
		}
	}

	return &Set{root: root}, nil
}

// Execute renders the named page into w.
func (s *Set) Execute(w io.Writer, name string, data any) error {
	return s.root.ExecuteTemplate(w, name, data)
}
