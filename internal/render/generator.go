// Package render builds the static site: it loads the content collection,
// renders Markdown through the template set, and writes the page tree.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"blogbuilder/internal/config"
	"blogbuilder/internal/feed"
	"blogbuilder/internal/foundation"
	"blogbuilder/internal/gitinfo"
	"blogbuilder/internal/logfields"
	"blogbuilder/internal/markdown"
	"blogbuilder/internal/metrics"
	"blogbuilder/internal/post"
	"blogbuilder/internal/site"
	"blogbuilder/internal/templates"
)

// Generator orchestrates site builds. One Generator may run many builds, but
// not concurrently with itself.
type Generator struct {
	cfg      *config.Config
	tmpl     *templates.Set
	md       *markdown.Renderer
	recorder metrics.Recorder

	includeDrafts bool
	now           func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithDrafts includes draft posts in output (preview builds).
func WithDrafts(include bool) Option {
	return func(g *Generator) { g.includeDrafts = include }
}

// WithClock overrides the build clock (tests).
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator loads templates and prepares a Generator for the given config.
func NewGenerator(cfg *config.Config, opts ...Option) (*Generator, error) {
	tmpl, err := templates.Load(cfg.Content.LayoutsDir)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:  cfg,
		tmpl: tmpl,
		md: markdown.NewRenderer(markdown.Options{
			HighlightStyle: cfg.Render.HighlightStyle,
			Unsafe:         cfg.UnsafeHTMLEnabled(),
		}),
		recorder:      metrics.NoopRecorder{},
		includeDrafts: cfg.Content.IncludeDrafts,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Build runs the full pipeline and returns its report. The returned error is
// the first fatal stage error, if any; the report is always non-nil.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	bs := newBuildState(uuid.NewString(), g.now())
	slog.Info("Starting site build",
		logfields.BuildID(bs.Report.BuildID),
		slog.String("content", g.cfg.Content.Dir),
		slog.String("output", g.cfg.Output.Dir),
		slog.Bool("drafts", g.includeDrafts))

	err := runStages(ctx, bs, g.recorder, []namedStage{
		{"discover", g.stageDiscover},
		{"filter", g.stageFilter},
		{"render", g.stageRender},
		{"indexes", g.stageIndexes},
		{"feed", g.stageFeed},
		{"write", g.stageWrite},
	})

	bs.Report.End = g.now()
	switch {
	case err != nil:
		var se *StageError
		if errors.As(err, &se) && se.Kind == StageErrorCanceled {
			bs.Report.Outcome = OutcomeCanceled
		} else {
			bs.Report.Outcome = OutcomeFailed
		}
	case len(bs.Report.Warnings) > 0:
		bs.Report.Outcome = OutcomeWarning
	default:
		bs.Report.Outcome = OutcomeSuccess
	}

	g.recorder.ObserveBuildDuration(bs.Report.Duration())
	g.recorder.IncBuildOutcome(string(bs.Report.Outcome))

	slog.Info("Site build finished",
		logfields.BuildID(bs.Report.BuildID),
		logfields.Outcome(string(bs.Report.Outcome)),
		slog.Int("published", bs.Report.Published),
		slog.Int("drafts", bs.Report.Drafts),
		slog.Int("pages", bs.Report.Pages),
		slog.Duration("took", bs.Report.Duration()))
	return bs.Report, err
}

func (g *Generator) stageDiscover(_ context.Context, bs *BuildState) error {
	s, err := site.Load(site.LoadOptions{ContentDir: g.cfg.Content.Dir})
	if err != nil {
		return err
	}
	if len(s.Problems) > 0 {
		p := s.Problems[0]
		return foundation.WrapError(p.Err, foundation.ErrorCodeValidation, "content contains unparsable documents").
			WithContext("path", p.Path).
			WithContext("problems", len(s.Problems)).
			Build()
	}
	if g.cfg.Content.GitInfo {
		gitinfo.Annotate(g.cfg.Content.Dir, s.Posts)
	}
	bs.Site = s
	return nil
}

func (g *Generator) stageFilter(_ context.Context, bs *BuildState) error {
	bs.Published = bs.Site.Published(g.includeDrafts)
	bs.Report.Published = len(bs.Published)
	bs.Report.Drafts = len(bs.Site.Posts) - len(bs.Site.Published(false))
	g.recorder.SetPostCounts(bs.Report.Published, bs.Report.Drafts)
	return site.CheckSlugs(bs.Published)
}

func (g *Generator) stageRender(ctx context.Context, bs *BuildState) error {
	for _, p := range bs.Published {
		if err := ctx.Err(); err != nil {
			return canceled("render", err)
		}
		view, err := g.postView(p)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", p.Source, err)
		}
		var buf bytes.Buffer
		err = g.tmpl.Execute(&buf, templates.PagePost, map[string]any{
			"PageTitle": p.Title + " · " + g.cfg.Site.Title,
			"Site":      g.cfg.Site,
			"Post":      view,
		})
		if err != nil {
			return fmt.Errorf("rendering %s: %w", p.Source, err)
		}
		bs.Pages[p.PermalinkPath()+"index.html"] = buf.Bytes()
	}
	return nil
}

func (g *Generator) stageIndexes(_ context.Context, bs *BuildState) error {
	views := make([]PageView, 0, len(bs.Published))
	for _, p := range bs.Published {
		views = append(views, g.listView(p))
	}

	var buf bytes.Buffer
	err := g.tmpl.Execute(&buf, templates.PageIndex, map[string]any{
		"PageTitle": g.cfg.Site.Title,
		"Site":      g.cfg.Site,
		"Posts":     views,
	})
	if err != nil {
		return err
	}
	bs.Pages["index.html"] = buf.Bytes()

	tags := site.Tags(bs.Published)
	type tagCount struct {
		Name  string
		Count int
	}
	counts := make([]tagCount, 0, len(tags))
	for name, posts := range tags {
		counts = append(counts, tagCount{Name: name, Count: len(posts)})

		tagViews := make([]PageView, 0, len(posts))
		for _, p := range posts {
			tagViews = append(tagViews, g.listView(p))
		}
		var tagBuf bytes.Buffer
		err := g.tmpl.Execute(&tagBuf, templates.PageTag, map[string]any{
			"PageTitle": name + " · " + g.cfg.Site.Title,
			"Site":      g.cfg.Site,
			"Tag":       name,
			"Posts":     tagViews,
		})
		if err != nil {
			return err
		}
		bs.Pages["tags/"+name+"/index.html"] = tagBuf.Bytes()
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })

	var tagsBuf bytes.Buffer
	err = g.tmpl.Execute(&tagsBuf, templates.PageTags, map[string]any{
		"PageTitle": "Tags · " + g.cfg.Site.Title,
		"Site":      g.cfg.Site,
		"Tags":      counts,
	})
	if err != nil {
		return err
	}
	bs.Pages["tags/index.html"] = tagsBuf.Bytes()
	return nil
}

func (g *Generator) stageFeed(_ context.Context, bs *BuildState) error {
	opts := feed.Options{
		Title:       g.cfg.Site.Title,
		BaseURL:     g.cfg.Site.BaseURL,
		Description: g.cfg.Site.Description,
	}

	// Drafts never leak into the feed, even in preview builds.
	published := bs.Site.Published(false)

	rss, err := feed.RSS(opts, published, g.now())
	if err != nil {
		return warning("feed", err)
	}
	bs.Pages["feed.xml"] = rss

	sitemap, err := feed.Sitemap(opts, published)
	if err != nil {
		return warning("feed", err)
	}
	bs.Pages["sitemap.xml"] = sitemap
	return nil
}

// stageWrite stages the page tree in a temp directory next to the output dir
// and swaps it in, so a failed build never leaves a half-written site.
func (g *Generator) stageWrite(_ context.Context, bs *BuildState) error {
	outDir := g.cfg.Output.Dir
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(parent, ".staging-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	for rel, content := range bs.Pages {
		dst := filepath.Join(staging, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(dst, content, 0o644); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(outDir); err != nil {
		return err
	}
	if err := os.Rename(staging, outDir); err != nil {
		return err
	}
	bs.Report.Pages = len(bs.Pages)
	return nil
}

// PageView is the template-facing projection of a post.
type PageView struct {
	Title     string
	Permalink string
	Date      time.Time
	LastMod   time.Time
	Author    string
	Tags      []string
	Summary   string
	Content   template.HTML
	Draft     bool
}

func (g *Generator) listView(p *post.Post) PageView {
	return PageView{
		Title:     p.Title,
		Permalink: g.cfg.Site.BaseURL + "/" + p.PermalinkPath(),
		Date:      p.Date,
		LastMod:   p.LastMod,
		Author:    p.Author,
		Tags:      p.Tags,
		Summary:   p.Summary,
		Draft:     p.Draft,
	}
}

func (g *Generator) postView(p *post.Post) (PageView, error) {
	html, err := g.md.Render(p.Body)
	if err != nil {
		return PageView{}, err
	}
	view := g.listView(p)
	view.Content = template.HTML(html) // #nosec G203 -- authored content rendered by goldmark
	return view, nil
}
