// Package queue serializes all generation work onto a single background
// worker while any number of concurrent sessions submit and observe requests.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, Enqueue, Result, Stats.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - record.go: Record, Status and Phase types.
//   - worker.go: lazy single-worker drain loop and per-request execution.
//   - position.go: non-blocking position/phase lookup.
//   - wait.go: blocking wait facade with progress observations.
//   - errors.go: error types and helpers (IsNotFound, IsGenerationFailed).
//   - events.go: EventPublisher seam; eventpub_memory.go captures for tests.
//   - metrics.go: Prometheus collectors for queue health.
//
// Invariants the package maintains: at most one request is ever in the
// processing state; waiting requests are drained strictly FIFO; a record's
// terminal state (completed or error) is immutable; a failing backend call is
// recorded on its own request only and never kills the worker loop.
//
// External packages should construct one Manager per process and inject it
// into callers; there is no package-level singleton.
package queue
