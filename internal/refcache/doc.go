// Package refcache memoizes reference-model loads so that each solved model
// is loaded at most once per run, however many metrics request it. It is
// structured into small files by concern:
//
//   - cache.go: core Cache type, get-or-load, release/clear, stats.
//   - config.go: CacheConfig and defaults; NewWithConfig applies defaults.
//   - key.go: cache-key derivation from run context and parameter vector.
//   - trim.go: best-effort discarding of large arrays after a fresh load.
//   - telemetry.go: optional JSON sidecar of per-key access counts.
//   - metrics.go: prometheus collectors.
//
// Lifecycle: a cached model is held under a non-owning weak pointer plus an
// owning strong slot. The strong slot pins the model for the duration of a
// metric batch; ReleaseStrongRefs drops every pin at the batch boundary so
// models not held elsewhere become collectable. A weak pointer whose target
// has been collected is treated as a cold miss, never as an error.
//
// A Cache is not safe for concurrent use: the batch driver runs all cache
// operations on one goroutine, and loads block that goroutine for the
// duration of the disk read.
package refcache
