package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"survivald/internal/schema"
	"survivald/pkg/types"
)

// Manager serves survival predictions from a single model loaded once at
// startup.
type Manager struct {
	mu     sync.RWMutex
	state  State
	loaded *loadedModel
	err    string

	ref         string
	loader      Loader
	labels      schema.LabelTable
	loadTimeout time.Duration
	log         zerolog.Logger
	publisher   EventPublisher

	once    sync.Once
	loadErr error

	predictions    atomic.Uint64
	validationErrs atomic.Uint64
	predictErrs    atomic.Uint64
	notReady       atomic.Uint64

	startTime time.Time
}

// Ready reports whether a predictor is installed.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.loaded != nil
}

// State returns the current readiness state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Info describes the loaded model. ok is false until the model is ready.
func (m *Manager) Info() (types.ModelInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loaded == nil {
		return types.ModelInfo{}, false
	}
	return m.loaded.info, true
}

// Labels returns a copy of the label table.
func (m *Manager) Labels() schema.LabelTable {
	return m.labels.Clone()
}

// Reference returns the configured model reference.
func (m *Manager) Reference() string { return m.ref }

// acquire returns the installed model or a ServiceNotReadyError.
func (m *Manager) acquire() (*loadedModel, error) {
	m.mu.RLock()
	lm, st := m.loaded, m.state
	m.mu.RUnlock()
	if st != StateReady || lm == nil {
		return nil, &ServiceNotReadyError{State: st}
	}
	return lm, nil
}
