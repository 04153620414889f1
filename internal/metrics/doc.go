// Package metrics records sync metrics behind a small Recorder interface.
//
// Components hold a Recorder and default to NoopRecorder, so nothing needs a
// nil check when metrics are disabled. The daemon swaps in a
// PrometheusRecorder and serves its registry through HTTPHandler:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	mux.Handle(cfg.Monitoring.Metrics.Path, metrics.HTTPHandler(reg))
package metrics
