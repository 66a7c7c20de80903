package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blogbuilder/internal/logfields"
	"blogbuilder/internal/metrics"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // build must abort
	StageErrorWarning  StageErrorKind = "warning"  // record and continue
	StageErrorCanceled StageErrorKind = "canceled" // context cancellation
)

// StageError carries the category and underlying cause of a stage failure.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func fatal(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func warning(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func canceled(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages in order, recording timings and metrics, and
// stops at the first fatal or canceled stage.
func runStages(ctx context.Context, bs *BuildState, recorder metrics.Recorder, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := canceled(st.name, ctx.Err())
			bs.Report.Errors = append(bs.Report.Errors, se)
			recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
		}

		start := time.Now()
		err := st.fn(ctx, bs)
		elapsed := time.Since(start)
		bs.Report.Timings[st.name] = elapsed
		recorder.ObserveStageDuration(st.name, elapsed)

		if err == nil {
			recorder.IncStageResult(st.name, metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = fatal(st.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			slog.Warn("Build stage reported a warning", logfields.Stage(st.name), logfields.Error(se.Err))
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			recorder.IncStageResult(st.name, metrics.ResultWarning)
		case StageErrorCanceled:
			bs.Report.Errors = append(bs.Report.Errors, se)
			recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
			bs.Report.Errors = append(bs.Report.Errors, se)
			recorder.IncStageResult(st.name, metrics.ResultFatal)
			return se
		}
	}
	return nil
}
