// Package metrics exposes Prometheus collectors for storage operations and
// background task dispatch.
//
// Collectors are registered on an explicit prometheus.Registerer so that tests can
// use a fresh registry. The start command serves them on GET /metrics.
package metrics
