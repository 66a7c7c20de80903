package render

import (
	"time"

	"blogbuilder/internal/post"
	"blogbuilder/internal/site"
)

// Outcome is the final classification of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// BuildReport summarizes a completed (or aborted) build.
type BuildReport struct {
	BuildID   string
	Start     time.Time
	End       time.Time
	Outcome   Outcome
	Published int
	Drafts    int
	Pages     int
	Timings   map[string]time.Duration
	Warnings  []error
	Errors    []error
}

// Duration is the wall-clock build time.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// BuildState carries mutable state across stages.
type BuildState struct {
	Site      *site.Site
	Published []*post.Post

	// Pages maps site-relative output paths to rendered file contents.
	Pages map[string][]byte

	Report *BuildReport
}

func newBuildState(id string, start time.Time) *BuildState {
	return &BuildState{
		Pages: make(map[string][]byte),
		Report: &BuildReport{
			BuildID: id,
			Start:   start,
			Timings: make(map[string]time.Duration),
		},
	}
}
