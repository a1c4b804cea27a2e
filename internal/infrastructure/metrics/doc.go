// Package metrics exposes expvar-published counters for code generation,
// project imports and store operations, and renders them in the Prometheus
// text exposition format for the server's /metrics endpoint.
package metrics
