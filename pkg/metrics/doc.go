// Package metrics exposes Prometheus instrumentation for the pool
// (starts by outcome, occupancy, latency) and the operator HTTP
// surface's health/readiness endpoints. Everything here is registered
// against the default Prometheus registry at init and served by
// Handler; nothing requires a running pool to import.
package metrics
