// Package post models a single Markdown blog post: YAML front matter plus a
// Markdown body.
package post

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"blogbuilder/internal/foundation"
	"blogbuilder/internal/frontmatter"
	"blogbuilder/internal/slug"
)

// Post is a parsed content document. Posts are standalone units; nothing in
// the model references another post.
type Post struct {
	Title   string
	Date    time.Time
	Draft   bool
	Slug    string
	Tags    []string
	Summary string
	Author  string

	// Body is the raw Markdown body with front matter removed.
	Body []byte

	// Source is the path the post was read from, relative paths as given.
	Source string

	// LastMod is an optional modification time resolved from git history.
	LastMod time.Time

	style frontmatter.Style
}

// dateLayouts are the accepted front matter date formats, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a front matter date value.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, foundation.ValidationError("unrecognized date").
		WithContext("date", raw).
		Build()
}

// rawMeta mirrors the front matter schema. Draft is decoded loosely so that a
// non-boolean value can be reported as a validation error instead of a YAML
// type mismatch.
type rawMeta struct {
	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Draft   any      `yaml:"draft"`
	Slug    string   `yaml:"slug"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
	Author  string   `yaml:"author"`
}

// Parse parses raw document bytes into a Post. source is used for error
// context and slug derivation; it may be empty.
func Parse(content []byte, source string) (*Post, error) {
	meta, body, found, style, err := frontmatter.Split(content)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeValidation, "invalid front matter").
			WithContext("source", source).
			Build()
	}
	if !found {
		return nil, foundation.ValidationError("document has no front matter").
			WithContext("source", source).
			Build()
	}

	var raw rawMeta
	if err := frontmatter.Decode(meta, &raw); err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeValidation, "invalid front matter").
			WithContext("source", source).
			Build()
	}

	p := &Post{
		Title:   strings.TrimSpace(raw.Title),
		Slug:    raw.Slug,
		Tags:    normalizeTags(raw.Tags),
		Summary: raw.Summary,
		Author:  raw.Author,
		Body:    body,
		Source:  source,
		style:   style,
	}

	if p.Title == "" {
		return nil, foundation.ValidationError("title must be a non-empty string").
			WithContext("source", source).
			Build()
	}

	if strings.TrimSpace(raw.Date) == "" {
		return nil, foundation.ValidationError("date is required").
			WithContext("source", source).
			Build()
	}
	if p.Date, err = ParseDate(raw.Date); err != nil {
		return nil, err
	}

	switch v := raw.Draft.(type) {
	case nil:
		// Absent means published.
	case bool:
		p.Draft = v
	default:
		return nil, foundation.ValidationError("draft must be a boolean").
			WithContext("source", source).
			WithContext("draft", raw.Draft).
			Build()
	}

	if p.Slug == "" {
		if source != "" {
			p.Slug = slug.FromFilename(filepath.Base(source))
		}
		if p.Slug == "" {
			p.Slug = slug.Make(p.Title)
		}
	} else {
		p.Slug = slug.Make(p.Slug)
	}

	return p, nil
}

// normalizeTags slugifies tags so they are directly usable in page paths.
// Tags that slugify to nothing are dropped.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if s := slug.Make(t); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseFile reads and parses a post from disk.
func ParseFile(path string) (*Post, error) {
	// #nosec G304 -- paths come from directory walks under the content dir.
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeFilesystem, "failed to read post").
			WithContext("path", path).
			Build()
	}
	return Parse(content, path)
}

// Published reports whether the post belongs in rendered output.
func (p *Post) Published() bool { return !p.Draft }

// Style returns the newline style of the source document.
func (p *Post) Style() frontmatter.Style { return p.style }

// PermalinkPath returns the site-relative output path for the post page.
func (p *Post) PermalinkPath() string { return "posts/" + p.Slug + "/" }
