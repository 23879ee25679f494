// Package observability provides concrete Logger, MetricsRecorder and Tracer
// implementations for the inventory service: a stdlib log adapter, a
// Prometheus recorder, an expvar recorder and a JSON-lines tracer.
package observability
