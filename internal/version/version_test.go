package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionDefaults(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, BuildTime)
	assert.NotEmpty(t, GitCommit)
}

func TestString(t *testing.T) {
	assert.Equal(t, Version, String())

	orig := GitCommit
	GitCommit = "abc1234"
	defer func() { GitCommit = orig }()
	assert.Equal(t, Version+" (abc1234)", String())
}
