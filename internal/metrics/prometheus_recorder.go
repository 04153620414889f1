package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "notionsync"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration *prom.HistogramVec
	runOutcome  *prom.CounterVec
	pages       *prom.CounterVec
	images      *prom.CounterVec
	webhooks    *prom.CounterVec
	lastSuccess prom.Gauge
}

// NewPrometheusRecorder constructs the sync metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of sync runs",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Sync runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		pages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages handled by result",
		}, []string{"result"}),
		images: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "images_total",
			Help:      "Image downloads by result",
		}, []string{"result"}),
		webhooks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Webhook requests by response status",
		}, []string{"code"}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sync run",
		}),
	}
	reg.MustRegister(pr.runDuration, pr.runOutcome, pr.pages, pr.images, pr.webhooks, pr.lastSuccess)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(mode string, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(mode string, outcome ResultLabel) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(mode, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPage(result PageResult) {
	if p == nil {
		return
	}
	p.pages.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncImage(success bool) {
	if p == nil {
		return
	}
	res := ResultFailed
	if success {
		res = ResultSuccess
	}
	p.images.WithLabelValues(string(res)).Inc()
}

func (p *PrometheusRecorder) IncWebhook(status int) {
	if p == nil {
		return
	}
	p.webhooks.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) SetLastSuccess(t time.Time) {
	if p == nil {
		return
	}
	p.lastSuccess.Set(float64(t.Unix()))
}
