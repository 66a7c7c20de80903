package templates

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type siteInfo struct {
	Title       string
	BaseURL     string
	Description string
	Author      string
}

type pageView struct {
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

func TestLoad_EmbeddedDefaultsRenderIndex(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = set.Execute(&buf, PageIndex, map[string]any{
		"PageTitle": "My Blog",
		"Site":      siteInfo{Title: "My Blog", Author: "jane"},
		"Posts": []pageView{{
			Title:     "X",
			Permalink: "/posts/x/",
			Date:      time.Date(2020, 12, 12, 0, 0, 0, 0, time.UTC),
			Summary:   "short",
		}},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `<a href="/posts/x/">X</a>`)
	assert.Contains(t, out, "December 12, 2020")
	assert.Contains(t, out, "My Blog")
}

func TestLoad_PostPageMarksDrafts(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = set.Execute(&buf, PagePost, map[string]any{
		"PageTitle": "X",
		"Site":      siteInfo{Title: "Blog"},
		"Post": pageView{
			Title:   "X",
			Date:    time.Date(2020, 12, 12, 0, 0, 0, 0, time.UTC),
			Content: template.HTML("<p>hello</p>"),
			Draft:   true,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Draft preview")
	assert.Contains(t, buf.String(), "<p>hello</p>")
}

func TestLoad_OverrideReplacesEmbedded(t *testing.T) {
	dir := t.TempDir()
	override := `{{template "head" .}}<main id="custom">{{len .Posts}} posts</main>{{template "foot" .}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(override), 0o600))

	set, err := Load(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = set.Execute(&buf, PageIndex, map[string]any{
		"PageTitle": "t",
		"Site":      siteInfo{Title: "Blog"},
		"Posts":     []pageView{},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `<main id="custom">0 posts</main>`)
}

func TestLoad_InvalidOverrideFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"), []byte("{{broken"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
}
