// Package linkcheck verifies that site-internal links in rendered output
// resolve to pages that exist in the output tree.
package linkcheck

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"blogbuilder/internal/foundation"
)

// Broken is one unresolvable internal link.
type Broken struct {
	Page   string // output-relative page the link appears on
	Target string // the href/src as written
}

// Check walks outputDir, parses every HTML page, and resolves internal links
// against the output tree. baseURL, when non-empty, lets absolute links to
// the site's own host be checked too. External links are not fetched.
func Check(outputDir, baseURL string) ([]Broken, error) {
	pages := map[string]bool{}
	var htmlFiles []string

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages[rel] = true
		if strings.HasSuffix(rel, ".html") {
			htmlFiles = append(htmlFiles, rel)
		}
		return nil
	})
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeFilesystem, "failed to walk output directory").
			WithContext("dir", outputDir).
			Build()
	}

	var broken []Broken
	for _, page := range htmlFiles {
		// #nosec G304 -- paths come from the walk above.
		f, err := os.Open(filepath.Join(outputDir, filepath.FromSlash(page)))
		if err != nil {
			return nil, err
		}
		refs, err := extractRefs(f)
		_ = f.Close()
		if err != nil {
			return nil, foundation.WrapError(err, foundation.ErrorCodeValidation, "failed to parse rendered page").
				WithContext("page", page).
				Build()
		}

		for _, ref := range refs {
			target, internal := normalize(ref, page, baseURL)
			if !internal {
				continue
			}
			if !resolves(pages, target) {
				broken = append(broken, Broken{Page: page, Target: ref})
			}
		}
	}
	return broken, nil
}

// extractRefs pulls href and src attributes out of an HTML document.
func extractRefs(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					refs = append(refs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return refs, nil
}

// normalize turns a link into an output-relative path. internal is false for
// links that leave the site (other hosts, mailto, fragments alone).
func normalize(ref, fromPage, baseURL string) (target string, internal bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" || u.Host != "" {
		base := strings.TrimRight(baseURL, "/")
		if base == "" || !strings.HasPrefix(ref, base+"/") {
			return "", false
		}
		u, err = url.Parse(strings.TrimPrefix(ref, base))
		if err != nil {
			return "", false
		}
	}
	if u.Path == "" {
		return "", false // pure fragment or query
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = path.Join("/", path.Dir(fromPage), p)
	}
	return strings.TrimPrefix(path.Clean(p), "/"), true
}

// resolves checks whether target names a file or a directory index.
func resolves(pages map[string]bool, target string) bool {
	if target == "" || target == "." {
		return pages["index.html"]
	}
	if pages[target] {
		return true
	}
	return pages[path.Join(target, "index.html")]
}
