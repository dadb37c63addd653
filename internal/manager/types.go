package manager

import (
	"context"

	"survivald/internal/model"
	"survivald/pkg/types"
)

// State represents the process-wide readiness state.
type State string

const (
	StateNotReady State = "not_ready"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State State
	Model *types.ModelInfo
	Err   string
}

// Loader produces the predictor. The default loader resolves the configured
// reference through the tracking store.
type Loader interface {
	Load(ctx context.Context) (model.Predictor, types.ModelInfo, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (model.Predictor, types.ModelInfo, error)

func (f LoaderFunc) Load(ctx context.Context) (model.Predictor, types.ModelInfo, error) {
	return f(ctx)
}

// loadedModel is installed once and never mutated.
type loadedModel struct {
	predictor model.Predictor
	info      types.ModelInfo
}
