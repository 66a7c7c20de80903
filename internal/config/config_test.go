package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogbuilder/internal/foundation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: My Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, "public", cfg.Output.Dir)
	assert.Equal(t, "github", cfg.Render.HighlightStyle)
	assert.Equal(t, ":1313", cfg.Server.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.QuietWindow.Std())
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.True(t, cfg.UnsafeHTMLEnabled())
	assert.False(t, cfg.Content.IncludeDrafts)
}

func TestLoad_MissingTitle_IsConfigurationError(t *testing.T) {
	path := writeConfig(t, "content:\n  dir: posts\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, foundation.ErrorCodeConfiguration, foundation.CodeOf(err))
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "site:\n  title: X\nsiet:\n  typo: true\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, foundation.ErrorCodeConfiguration, foundation.CodeOf(err))
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `site:
  title: Engineering Notes
  base_url: https://blog.example.com
  author: jane
content:
  dir: posts
  include_drafts: true
  git_info: true
render:
  highlight_style: monokai
  unsafe_html: false
server:
  addr: ":8080"
  metrics: true
  rebuild_cron: "0 * * * *"
watch:
  quiet_window: 250ms
  max_delay: 2s
events:
  nats_url: nats://localhost:4222
logging:
  level: DEBUG
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "posts", cfg.Content.Dir)
	assert.True(t, cfg.Content.IncludeDrafts)
	assert.True(t, cfg.Content.GitInfo)
	assert.Equal(t, "monokai", cfg.Render.HighlightStyle)
	assert.False(t, cfg.UnsafeHTMLEnabled())
	assert.Equal(t, "0 * * * *", cfg.Server.RebuildCron)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.QuietWindow.Std())
	assert.Equal(t, "nats://localhost:4222", cfg.Events.URL)
	assert.Equal(t, "blogbuilder.builds", cfg.Events.Subject)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestValidate_QuietWindowBounded(t *testing.T) {
	cfg := Default()
	cfg.Site.Title = "X"
	cfg.Watch.QuietWindow = Duration(10 * time.Second)
	cfg.Watch.MaxDelay = Duration(time.Second)
	require.Error(t, cfg.Validate())
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, LogLevelError, NormalizeLogLevel(" error "))
}
