package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogbuilder/internal/foundation"
)

func TestParse_MinimalPublishedPost(t *testing.T) {
	src := []byte("---\ntitle: X\ndate: 2020-12-12T00:00:00Z\ndraft: false\n---\nbody\n")

	p, err := Parse(src, "content/x.md")
	require.NoError(t, err)
	assert.Equal(t, "X", p.Title)
	assert.Equal(t, time.Date(2020, 12, 12, 0, 0, 0, 0, time.UTC), p.Date)
	assert.False(t, p.Draft)
	assert.True(t, p.Published())
	assert.Equal(t, "x", p.Slug)
	assert.Equal(t, []byte("body\n"), p.Body)
}

func TestParse_DraftAbsent_MeansPublished(t *testing.T) {
	p, err := Parse([]byte("---\ntitle: X\ndate: 2020-12-12\n---\n"), "")
	require.NoError(t, err)
	assert.False(t, p.Draft)
}

func TestParse_DraftTrue(t *testing.T) {
	p, err := Parse([]byte("---\ntitle: X\ndate: 2020-12-12\ndraft: true\n---\n"), "")
	require.NoError(t, err)
	assert.True(t, p.Draft)
	assert.False(t, p.Published())
}

func TestParse_DraftNotBoolean_IsValidationError(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: X\ndate: 2020-12-12\ndraft: maybe\n---\n"), "")
	require.Error(t, err)
	ce, ok := foundation.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, foundation.ErrorCodeValidation, ce.Code)
}

func TestParse_MissingTitle_IsValidationError(t *testing.T) {
	for _, src := range []string{
		"---\ndate: 2020-12-12\n---\n",
		"---\ntitle: \"  \"\ndate: 2020-12-12\n---\n",
	} {
		_, err := Parse([]byte(src), "")
		require.Error(t, err, "input %q", src)
		assert.Equal(t, foundation.ErrorCodeValidation, foundation.CodeOf(err))
	}
}

func TestParse_MissingOrBadDate_IsValidationError(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: X\n---\n"), "")
	require.Error(t, err)

	_, err = Parse([]byte("---\ntitle: X\ndate: yesterday\n---\n"), "")
	require.Error(t, err)
	assert.Equal(t, foundation.ErrorCodeValidation, foundation.CodeOf(err))
}

func TestParse_NoFrontMatter_IsError(t *testing.T) {
	_, err := Parse([]byte("# just markdown\n"), "content/x.md")
	require.Error(t, err)
}

func TestParse_UnterminatedFrontMatter_IsError(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: X\n"), "content/x.md")
	require.Error(t, err)
}

func TestParse_SupplementaryFields(t *testing.T) {
	src := []byte(`---
title: Hunting an EF Core Memory Leak
date: 2021-03-01T09:30:00Z
slug: "EF Core Memory Leak"
tags:
  - dotnet
  - caching
summary: How a PredicateBuilder expression defeated the query cache.
author: jane
---
body
`)
	p, err := Parse(src, "content/efcore.md")
	require.NoError(t, err)
	assert.Equal(t, "ef-core-memory-leak", p.Slug)
	assert.Equal(t, []string{"dotnet", "caching"}, p.Tags)
	assert.Equal(t, "jane", p.Author)
	assert.Equal(t, "posts/ef-core-memory-leak/", p.PermalinkPath())
}

func TestParseDate_AcceptedLayouts(t *testing.T) {
	for _, raw := range []string{
		"2020-12-12T00:00:00Z",
		"2020-12-12T00:00:00+02:00",
		"2020-12-12T00:00:00",
		"2020-12-12 00:00:00",
		"2020-12-12",
	} {
		ts, err := ParseDate(raw)
		require.NoError(t, err, "layout %q", raw)
		assert.Equal(t, 2020, ts.Year())
	}
}

func TestParse_SlugFallsBackToTitle(t *testing.T) {
	p, err := Parse([]byte("---\ntitle: Some Title Here\ndate: 2020-12-12\n---\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "some-title-here", p.Slug)
}
