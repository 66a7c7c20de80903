// Package site loads a directory of Markdown posts into a source collection
// and derives the published view from it.
package site

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"blogbuilder/internal/foundation"
	"blogbuilder/internal/post"
)

// Site is a loaded content collection.
type Site struct {
	// Posts is the full source collection, drafts included.
	Posts []*post.Post

	// Problems holds per-document parse failures. A site with problems can
	// still be inspected (lint), but a build treats them as fatal.
	Problems []Problem
}

// Problem ties a parse error to its source document.
type Problem struct {
	Path string
	Err  error
}

// LoadOptions controls directory walking.
type LoadOptions struct {
	// ContentDir is the directory walked for posts.
	ContentDir string
}

var markdownExts = map[string]bool{".md": true, ".markdown": true}

// Load walks ContentDir recursively and parses every Markdown document.
// Dotfiles, dot-directories and underscore-prefixed names are skipped.
// Parse failures are collected as Problems rather than aborting the walk.
func Load(opts LoadOptions) (*Site, error) {
	s := &Site{}

	err := filepath.WalkDir(opts.ContentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		hidden := strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
		if d.IsDir() {
			if hidden && path != opts.ContentDir {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !markdownExts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		p, perr := post.ParseFile(path)
		if perr != nil {
			slog.Warn("Failed to parse post", slog.String("path", path), slog.Any("error", perr))
			s.Problems = append(s.Problems, Problem{Path: path, Err: perr})
			return nil
		}
		s.Posts = append(s.Posts, p)
		return nil
	})
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeFilesystem, "failed to walk content directory").
			WithContext("dir", opts.ContentDir).
			Build()
	}

	sortPosts(s.Posts)
	return s, nil
}

// Published returns the posts that belong in rendered output: drafts are
// excluded unless includeDrafts is set. The result is newest-first.
func (s *Site) Published(includeDrafts bool) []*post.Post {
	out := make([]*post.Post, 0, len(s.Posts))
	for _, p := range s.Posts {
		if includeDrafts || p.Published() {
			out = append(out, p)
		}
	}
	return out
}

// Drafts returns only the draft posts.
func (s *Site) Drafts() []*post.Post {
	out := make([]*post.Post, 0)
	for _, p := range s.Posts {
		if p.Draft {
			out = append(out, p)
		}
	}
	return out
}

// Tags returns the tag set of the given posts with per-tag post lists,
// preserving the newest-first order within each tag.
func Tags(posts []*post.Post) map[string][]*post.Post {
	tags := make(map[string][]*post.Post)
	for _, p := range posts {
		for _, tag := range p.Tags {
			tags[tag] = append(tags[tag], p)
		}
	}
	return tags
}

// CheckSlugs reports an error when two posts in the given set share a slug;
// their output pages would overwrite each other.
func CheckSlugs(posts []*post.Post) error {
	seen := make(map[string]string, len(posts))
	for _, p := range posts {
		if prev, dup := seen[p.Slug]; dup {
			return foundation.ValidationError("duplicate slug").
				WithContext("slug", p.Slug).
				WithContext("first", prev).
				WithContext("second", p.Source).
				Build()
		}
		seen[p.Slug] = p.Source
	}
	return nil
}

// sortPosts orders newest-first with a stable slug tie-break.
func sortPosts(posts []*post.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}
