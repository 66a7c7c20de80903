package lint

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"blogbuilder/internal/frontmatter"
	"blogbuilder/internal/markdown"
	"blogbuilder/internal/post"
)

// Rule checks one document and reports issues. Rules receive raw bytes so a
// single read serves every rule.
type Rule interface {
	Name() string
	Check(path string, content []byte) []Issue
}

// DefaultRules returns the rule set applied by the lint command.
func DefaultRules() []Rule {
	return []Rule{&FrontMatterRule{}, &FenceRule{}}
}

// FrontMatterRule validates that a document's front matter parses and carries
// the required fields: a non-empty title, a valid date, and a boolean draft
// flag when present.
type FrontMatterRule struct{}

func (r *FrontMatterRule) Name() string { return "front-matter" }

func (r *FrontMatterRule) Check(path string, content []byte) []Issue {
	meta, _, found, _, err := frontmatter.Split(content)
	if err != nil {
		msg := "front matter is malformed"
		if errors.Is(err, frontmatter.ErrUnterminated) {
			msg = "front matter block is never closed"
		}
		return []Issue{{FilePath: path, Severity: SeverityError, Rule: r.Name(), Message: msg, Line: 1}}
	}
	if !found {
		return []Issue{{FilePath: path, Severity: SeverityError, Rule: r.Name(), Message: "document has no front matter", Line: 1}}
	}

	fields, err := frontmatter.ParseMap(meta)
	if err != nil {
		return []Issue{{FilePath: path, Severity: SeverityError, Rule: r.Name(), Message: "front matter is not valid YAML: " + err.Error(), Line: 1}}
	}

	var issues []Issue
	appendIssue := func(msg string) {
		issues = append(issues, Issue{FilePath: path, Severity: SeverityError, Rule: r.Name(), Message: msg, Line: 1})
	}

	title, _ := fields["title"].(string)
	if strings.TrimSpace(title) == "" {
		appendIssue("title must be a non-empty string")
	}

	switch date := fields["date"].(type) {
	case nil:
		appendIssue("date is required")
	case time.Time:
		// yaml resolves fully-formed timestamps directly.
	case string:
		if _, err := post.ParseDate(date); err != nil {
			appendIssue("date is not a recognized timestamp: " + date)
		}
	default:
		appendIssue("date must be a timestamp")
	}

	if draft, present := fields["draft"]; present {
		if _, ok := draft.(bool); !ok {
			appendIssue("draft must be a boolean")
		}
	}

	return issues
}

// FenceRule verifies that every fenced code block has a matching closing
// delimiter.
type FenceRule struct{}

func (r *FenceRule) Name() string { return "code-fences" }

func (r *FenceRule) Check(path string, content []byte) []Issue {
	// Fences live in the body; front matter delimiters would otherwise
	// confuse offsets.
	_, body, _, _, err := frontmatter.Split(content)
	if err != nil {
		return nil // the front matter rule already reports this
	}

	_, unclosed := markdown.Fences(body)
	if unclosed < 0 {
		return nil
	}

	line := bytes.Count(body[:unclosed], []byte("\n")) + 1
	if headerLines := len(content) - len(body); headerLines > 0 {
		line += bytes.Count(content[:headerLines], []byte("\n"))
	}
	return []Issue{{
		FilePath: path,
		Severity: SeverityError,
		Rule:     r.Name(),
		Message:  "fenced code block is never closed",
		Line:     line,
	}}
}
