// Package metrics defines observability hooks for build activity. The
// default recorder does nothing; runs started with a metrics address get
// the Prometheus-backed one.
package metrics

import "time"

// OutcomeLabel enumerates final build statuses for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder receives build telemetry. Implementations must tolerate nil
// receivers so injection stays optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome OutcomeLabel)
	IncCacheResult(hit bool)
	SetWatchActive(active bool)
	IncRebuild()
}

// NoopRecorder is the Recorder used when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(OutcomeLabel)       {}
func (NoopRecorder) IncCacheResult(bool)                {}
func (NoopRecorder) SetWatchActive(bool)                {}
func (NoopRecorder) IncRebuild()                        {}
