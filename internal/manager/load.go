package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"survivald/internal/model"
	"survivald/internal/registry"
	"survivald/pkg/types"
)

// Load resolves and decodes the model. It runs at most once per Manager;
// later calls return the first outcome. On success the state becomes ready,
// on failure it becomes failed and stays there.
func (m *Manager) Load(ctx context.Context) error {
	m.once.Do(func() {
		m.loadErr = m.load(ctx)
	})
	return m.loadErr
}

func (m *Manager) load(ctx context.Context) error {
	start := time.Now()
	m.publisher.Publish(Event{Name: EventLoadStart, Model: m.ref})
	m.log.Info().Str("model", m.ref).Msg("loading model")

	ctx, cancel := context.WithTimeout(ctx, m.loadTimeout)
	defer cancel()

	pred, info, err := m.callLoader(ctx)
	if err == nil && pred == nil {
		err = errors.New("loader returned no predictor")
	}
	elapsed := time.Since(start)
	modelLoadDuration.Set(elapsed.Seconds())

	if err != nil {
		lerr := &ModelLoadError{Ref: m.ref, Err: err}
		m.mu.Lock()
		m.state = StateFailed
		m.err = lerr.Error()
		m.mu.Unlock()
		modelReady.Set(0)
		m.log.Error().Err(err).Str("model", m.ref).Dur("elapsed", elapsed).Msg("model load failed")
		m.publisher.Publish(Event{Name: EventLoadFailed, Model: m.ref, Fields: map[string]any{"error": err.Error()}})
		return lerr
	}

	if info.URI == "" {
		info.URI = m.ref
	}
	info.LoadedAtUnix = time.Now().Unix()
	info.LoadMillis = elapsed.Milliseconds()

	m.mu.Lock()
	m.loaded = &loadedModel{predictor: pred, info: info}
	m.state = StateReady
	m.err = ""
	m.mu.Unlock()
	modelReady.Set(1)
	m.log.Info().
		Str("model", m.ref).
		Str("type", info.ModelType).
		Str("location", info.Location).
		Dur("elapsed", elapsed).
		Msg("model ready")
	m.publisher.Publish(Event{Name: EventLoadDone, Model: m.ref, Fields: map[string]any{"model_type": info.ModelType, "load_ms": info.LoadMillis}})
	return nil
}

// callLoader runs the loader, converting a panic into an error so that the
// manager still reaches a terminal state.
func (m *Manager) callLoader(ctx context.Context) (pred model.Predictor, info types.ModelInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred, err = nil, fmt.Errorf("loader panic: %v", r)
		}
	}()
	return m.loader.Load(ctx)
}

// registryLoader loads the artifact named by ref through store.
type registryLoader struct {
	store registry.Store
	open  func() (registry.Store, error)
	ref   registry.Reference
}

func (l *registryLoader) Load(ctx context.Context) (model.Predictor, types.ModelInfo, error) {
	store := l.store
	if store == nil && l.open != nil && l.ref.IsRun() {
		s, err := l.open()
		if err != nil {
			return nil, types.ModelInfo{}, fmt.Errorf("open tracking store: %w", err)
		}
		defer s.Close()
		store = s
	}
	art, err := registry.Load(ctx, store, l.ref)
	if err != nil {
		return nil, types.ModelInfo{}, err
	}
	info := types.ModelInfo{
		URI:          l.ref.String(),
		RunID:        l.ref.RunID(),
		ArtifactPath: l.ref.ArtifactPath(),
		Location:     art.Location,
		ModelType:    art.Pipeline.Kind(),
		Columns:      art.Pipeline.Columns(),
	}
	return art.Pipeline, info, nil
}
