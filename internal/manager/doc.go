// Package manager owns the model-serving lifecycle: loading the predictor once
// and gating inference on readiness. It is structured into small files by
// concern:
//
//   - manager.go: core Manager type, readiness getters.
//   - config.go: ManagerConfig, defaults, NewWithConfig.
//   - types.go: State, Snapshot, Loader.
//   - errors.go: the four error kinds and their Is* helpers.
//   - load.go: once-only Load and the registry-backed loader.
//   - predict.go: PredictSurvival / Predict, the inference path.
//   - status_report.go: Snapshot and Status reporting.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors for load and prediction outcomes.
//
// Readiness moves not_ready -> ready or not_ready -> failed exactly once.
// After that the predictor is read-only and Predict may be called from any
// number of goroutines.
package manager
