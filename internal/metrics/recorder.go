package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// PageResult is what a sync run did with one page.
type PageResult string

const (
	PageWritten PageResult = "written"
	PageSkipped PageResult = "skipped"
	PageDeleted PageResult = "deleted"
	PageFailed  PageResult = "failed"
)

// Recorder defines observability hooks for sync runs. Implementations must be
// safe for concurrent use.
type Recorder interface {
	ObserveRunDuration(mode string, d time.Duration)
	IncRunOutcome(mode string, outcome ResultLabel)
	IncPage(result PageResult)
	IncImage(success bool)
	IncWebhook(status int)
	SetLastSuccess(t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(string, time.Duration) {}
func (NoopRecorder) IncRunOutcome(string, ResultLabel)        {}
func (NoopRecorder) IncPage(PageResult)                       {}
func (NoopRecorder) IncImage(bool)                            {}
func (NoopRecorder) IncWebhook(int)                           {}
func (NoopRecorder) SetLastSuccess(time.Time)                 {}
