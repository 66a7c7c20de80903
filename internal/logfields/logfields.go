// Package logfields holds canonical log field name constants to avoid
// drift across packages.
package logfields

import "log/slog"

const (
	KeyBuildID  = "build_id"
	KeyStage    = "stage"
	KeyOutcome  = "outcome"
	KeyCause    = "cause"
	KeyPath     = "path"
	KeySlug     = "slug"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Cause(c string) slog.Attr        { return slog.String(KeyCause, c) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
