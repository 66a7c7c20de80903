package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func postDoc(title, date string, draft string) string {
	doc := "---\ntitle: " + title + "\ndate: " + date + "\n"
	if draft != "" {
		doc += "draft: " + draft + "\n"
	}
	return doc + "---\nbody\n"
}

func TestLoad_CollectsAndSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "older.md", postDoc("Older", "2020-01-01", ""))
	writePost(t, dir, "newer.md", postDoc("Newer", "2021-06-15", ""))
	writePost(t, dir, "nested/deep.md", postDoc("Deep", "2020-06-01", ""))

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	require.Len(t, s.Posts, 3)
	assert.Equal(t, "Newer", s.Posts[0].Title)
	assert.Equal(t, "Deep", s.Posts[1].Title)
	assert.Equal(t, "Older", s.Posts[2].Title)
	assert.Empty(t, s.Problems)
}

func TestLoad_SkipsHiddenAndNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "post.md", postDoc("Post", "2020-01-01", ""))
	writePost(t, dir, ".hidden.md", postDoc("Hidden", "2020-01-01", ""))
	writePost(t, dir, "_wip.md", postDoc("WIP", "2020-01-01", ""))
	writePost(t, dir, "_drafts/x.md", postDoc("X", "2020-01-01", ""))
	writePost(t, dir, "notes.txt", "not markdown")

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	require.Len(t, s.Posts, 1)
	assert.Equal(t, "Post", s.Posts[0].Title)
}

func TestLoad_ParseFailureBecomesProblem(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good.md", postDoc("Good", "2020-01-01", ""))
	writePost(t, dir, "bad.md", "---\ntitle: Bad\nno closing delimiter\n")

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	assert.Len(t, s.Posts, 1)
	require.Len(t, s.Problems, 1)
	assert.Contains(t, s.Problems[0].Path, "bad.md")
}

// The draft-exclusion contract: a draft stays in the source collection but
// never reaches the published set unless drafts are explicitly included.
func TestPublished_ExcludesDrafts(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "x.md", postDoc("X", "2020-12-12T00:00:00Z", "false"))
	writePost(t, dir, "y.md", postDoc("Y", "2020-12-13T00:00:00Z", "true"))

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	require.Len(t, s.Posts, 2)

	published := s.Published(false)
	require.Len(t, published, 1)
	assert.Equal(t, "X", published[0].Title)

	withDrafts := s.Published(true)
	assert.Len(t, withDrafts, 2)

	drafts := s.Drafts()
	require.Len(t, drafts, 1)
	assert.Equal(t, "Y", drafts[0].Title)
}

func TestPublished_SameDocTogglesWithDraftFlag(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "x.md", postDoc("X", "2020-12-12T00:00:00Z", "false"))

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	require.Len(t, s.Published(false), 1)

	writePost(t, dir, "x.md", postDoc("X", "2020-12-12T00:00:00Z", "true"))
	s, err = Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	assert.Len(t, s.Posts, 1)
	assert.Empty(t, s.Published(false))
}

func TestTags_GroupsPosts(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "---\ntitle: A\ndate: 2021-01-02\ntags: [go, web]\n---\n")
	writePost(t, dir, "b.md", "---\ntitle: B\ndate: 2021-01-01\ntags: [go]\n---\n")

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)

	tags := Tags(s.Published(false))
	require.Len(t, tags["go"], 2)
	assert.Equal(t, "A", tags["go"][0].Title)
	require.Len(t, tags["web"], 1)
}

func TestCheckSlugs_DetectsCollision(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "one/post.md", postDoc("One", "2020-01-01", ""))
	writePost(t, dir, "two/post.md", postDoc("Two", "2020-01-02", ""))

	s, err := Load(LoadOptions{ContentDir: dir})
	require.NoError(t, err)
	require.Error(t, CheckSlugs(s.Posts))

	require.NoError(t, CheckSlugs(s.Posts[:1]))
}
