// Package metrics exposes Prometheus instruments for broadcasts, queue
// sends, channel deliveries and HTTP requests.
//
// A nil *Metrics is valid and records nothing, so components can take an
// optional metrics dependency without guarding every call.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	r.Use(m.Middleware)
//	r.Handle("/metrics", metrics.Handler(reg))
package metrics
