package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogbuilder/internal/render"
)

func TestBuildEvent_WireFormat(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	evt := BuildEvent{
		BuildID:   "b-1",
		Outcome:   string(render.OutcomeWarning),
		Started:   start,
		Finished:  start.Add(time.Second),
		Published: 3,
		Drafts:    1,
		Pages:     7,
		Warnings:  2,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "b-1", decoded["build_id"])
	assert.Equal(t, "warning", decoded["outcome"])
	assert.Equal(t, float64(3), decoded["published"])
	assert.Equal(t, float64(2), decoded["warnings"])
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishBuild(&render.BuildReport{BuildID: "x"}))
	assert.NoError(t, p.Close())
}
