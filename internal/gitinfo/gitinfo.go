// Package gitinfo resolves per-post metadata from the git history of the
// content directory.
package gitinfo

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"

	"blogbuilder/internal/post"
)

// Info is commit metadata for a single file.
type Info struct {
	LastMod time.Time
	Author  string
}

// Resolver looks up file history in a repository work tree.
type Resolver struct {
	repo *git.Repository
	root string
}

// Open locates the repository containing dir, searching parent directories
// the way the git CLI does. Returns an error when dir is not inside a work
// tree.
func Open(dir string) (*Resolver, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	return &Resolver{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Lookup returns the most recent commit touching path.
func (r *Resolver) Lookup(path string) (Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return Info{}, err
	}
	rel = filepath.ToSlash(rel)

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return Info{}, err
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return Info{}, err
	}
	return Info{LastMod: commit.Author.When, Author: commit.Author.Name}, nil
}

// Annotate fills LastMod on each post from git history. Posts with no
// history (untracked or uncommitted) are left untouched. A content directory
// outside any repository is not an error; Annotate just logs and returns.
func Annotate(contentDir string, posts []*post.Post) {
	r, err := Open(contentDir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Debug("Content directory is not in a git work tree", slog.String("dir", contentDir))
		} else {
			slog.Warn("Failed to open git repository", slog.String("dir", contentDir), slog.Any("error", err))
		}
		return
	}

	for _, p := range posts {
		info, err := r.Lookup(p.Source)
		if err != nil {
			slog.Debug("No git history for post", slog.String("source", p.Source))
			continue
		}
		p.LastMod = info.LastMod
		if p.Author == "" {
			p.Author = info.Author
		}
	}
}
