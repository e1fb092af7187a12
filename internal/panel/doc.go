// Package panel ties an off-screen renderer to a host UI panel. It is
// structured into small files by concern:
//
//   - lifecycle.go: Lifecycle, the per-panel state machine.
//   - manager.go: Manager, the registry of named panels driven by the host tick.
//   - config.go: Config/ManagerConfig and their defaults.
//   - types.go: State and Snapshot.
//   - errors.go: error types and helpers (IsPanelNotFound, IsNotReady, IsInvariantViolation).
//   - events.go, eventpub_memory.go, eventpub_log.go: lifecycle events and publishers.
//   - status.go: Status reporting for the HTTP layer.
//   - metrics.go: Prometheus collectors.
//
// Lifecycle methods other than the renderer callbacks are meant to be called
// from the host loop or from the HTTP layer; the callbacks only schedule work
// that the next Tick performs.
package panel
