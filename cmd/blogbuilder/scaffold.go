package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"blogbuilder/internal/config"
	"blogbuilder/internal/frontmatter"
	"blogbuilder/internal/slug"
)

const starterConfig = `site:
  title: "My Blog"
  base_url: "https://example.com"
  description: "Notes and essays"

content:
  dir: content

output:
  dir: public

render:
  highlight_style: github
`

const samplePost = `---
title: "Hello, World"
date: %s
draft: true
---

Welcome to your new blog. Edit this post, or create another one with:

` + "```sh" + `
blogbuilder new "My First Real Post"
` + "```" + `

Remove ` + "`draft: true`" + ` from the front matter when a post is ready to publish.
`

func runInit(dir string, force bool) error {
	cfgPath := filepath.Join(dir, "blog.yaml")
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	postsDir := filepath.Join(dir, "content", "posts")
	if err := os.MkdirAll(postsDir, 0o750); err != nil {
		return fmt.Errorf("create content directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	postPath := filepath.Join(postsDir, "hello-world.md")
	if _, err := os.Stat(postPath); os.IsNotExist(err) || force {
		body := fmt.Sprintf(samplePost, time.Now().Format("2006-01-02"))
		if err := os.WriteFile(postPath, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write sample post: %w", err)
		}
	}

	slog.Info("Initialized new blog", "config", cfgPath, "content", postsDir)
	return nil
}

func runNew(cfg *config.Config, title string) error {
	s := slug.Make(title)
	if s == "" {
		return fmt.Errorf("cannot derive a slug from title %q", title)
	}

	postsDir := filepath.Join(cfg.Content.Dir, "posts")
	if err := os.MkdirAll(postsDir, 0o750); err != nil {
		return fmt.Errorf("create posts directory: %w", err)
	}

	path := filepath.Join(postsDir, s+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	style := frontmatter.Style{Newline: "\n"}
	meta, err := frontmatter.Encode(map[string]any{
		"title": title,
		"date":  time.Now().Format("2006-01-02T15:04:05Z07:00"),
		"draft": true,
	}, style)
	if err != nil {
		return err
	}

	content := frontmatter.Join(meta, []byte("\nWrite your post here.\n"), true, style)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write post: %w", err)
	}

	fmt.Println(path)
	slog.Info("Created draft post", "path", path, "slug", s)
	return nil
}
