package manager

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"survivald/internal/registry"
	"survivald/internal/schema"
)

// defaultLoadTimeout bounds artifact resolution and decoding when
// ManagerConfig.LoadTimeout is unset.
const defaultLoadTimeout = 2 * time.Minute

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Reference names the model artifact. Required unless Loader is set.
	Reference registry.Reference
	// Store resolves run references. May be nil for local references.
	Store registry.Store
	// OpenStore is called by Load when Store is nil and the reference needs
	// a tracking store. The opened store is closed once the load finishes.
	OpenStore func() (registry.Store, error)
	// Loader overrides the registry-backed loader.
	Loader Loader
	// Labels maps predictor labels to survival statuses. Defaults to
	// schema.DefaultLabels.
	Labels      schema.LabelTable
	LoadTimeout time.Duration
	Logger      *zerolog.Logger
	Publisher   EventPublisher
}

// NewWithConfig constructs a Manager in the not_ready state.
func NewWithConfig(cfg ManagerConfig) (*Manager, error) {
	labels := cfg.Labels
	if labels == nil {
		labels = schema.DefaultLabels()
	}
	if err := labels.Validate(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	loader := cfg.Loader
	if loader == nil {
		if cfg.Reference.String() == "" {
			return nil, errors.New("manager: model reference is required")
		}
		loader = &registryLoader{store: cfg.Store, open: cfg.OpenStore, ref: cfg.Reference}
	}
	m := &Manager{
		state:       StateNotReady,
		ref:         cfg.Reference.String(),
		loader:      loader,
		labels:      labels.Clone(),
		loadTimeout: cfg.LoadTimeout,
		publisher:   cfg.Publisher,
		startTime:   time.Now(),
	}
	if m.loadTimeout <= 0 {
		m.loadTimeout = defaultLoadTimeout
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	} else {
		m.log = zerolog.Nop()
	}
	return m, nil
}
