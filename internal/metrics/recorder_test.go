package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRunDuration("manual", time.Second)
	r.IncRunOutcome("manual", ResultFailed)
	r.IncPage(PageFailed)
	r.IncImage(true)
	r.IncWebhook(500)
	r.SetLastSuccess(time.Now())
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.IncPage(PageWritten)
	p.ObserveRunDuration("webhook", time.Millisecond)
	p.SetLastSuccess(time.Now())
}
