package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"survivald/internal/model"
	"survivald/internal/registry"
	"survivald/internal/schema"
	"survivald/pkg/types"
)

func TestNewWithConfigDefaults(t *testing.T) {
	m := newTestManager(t, ManagerConfig{Loader: fakeLoader(&fakePredictor{})})
	if m.loadTimeout != defaultLoadTimeout {
		t.Fatalf("expected default loadTimeout=%v got %v", defaultLoadTimeout, m.loadTimeout)
	}
	if m.State() != StateNotReady || m.Ready() {
		t.Fatalf("new manager should be not_ready, got %s", m.State())
	}
	if s, _ := m.Labels().Status(1); s != "Survived" {
		t.Fatalf("default labels not applied: %q", s)
	}
}

func TestNewWithConfigRejects(t *testing.T) {
	if _, err := NewWithConfig(ManagerConfig{}); err == nil {
		t.Fatalf("expected error without reference or loader")
	}
	_, err := NewWithConfig(ManagerConfig{Loader: fakeLoader(&fakePredictor{}), Labels: schema.LabelTable{0: "only"}})
	if err == nil {
		t.Fatalf("expected error for single-entry label table")
	}
}

func TestPredictSurvival_Scenarios(t *testing.T) {
	p := &fakePredictor{}
	m := readyManager(t, p)
	ctx := context.Background()

	got, err := m.PredictSurvival(ctx, []byte(maleThird))
	if err != nil {
		t.Fatalf("male third: %v", err)
	}
	if got.Prediction != 0 || got.SurvivalStatus != "Not Survived" {
		t.Fatalf("male third: %+v", got)
	}
	got, err = m.PredictSurvival(ctx, []byte(femaleFirst))
	if err != nil {
		t.Fatalf("female first: %v", err)
	}
	if got.Prediction != 1 || got.SurvivalStatus != "Survived" {
		t.Fatalf("female first: %+v", got)
	}
	if n := p.calls.Load(); n != 2 {
		t.Fatalf("expected 2 predictor calls, got %d", n)
	}
}

func TestPredictSurvival_ValidationSkipsPredictor(t *testing.T) {
	p := &fakePredictor{}
	m := readyManager(t, p)
	_, err := m.PredictSurvival(context.Background(), []byte(missingAge))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *schema.ValidationError
	if !errors.As(err, &ve) || !ve.Has("Age") {
		t.Fatalf("expected Age to be reported: %v", err)
	}
	if Category(err) != CategoryValidation {
		t.Fatalf("category=%s", Category(err))
	}
	if p.calls.Load() != 0 {
		t.Fatalf("predictor must not run for invalid input")
	}
	if st := m.Status(); st.ValidationErrorsTotal != 1 || st.PredictionsTotal != 0 {
		t.Fatalf("counters: %+v", st)
	}
}

func TestPredictSurvival_NotReadyBeforeLoad(t *testing.T) {
	p := &fakePredictor{}
	m := newTestManager(t, ManagerConfig{Loader: fakeLoader(p)})
	// Readiness is checked before validation: even an invalid body is NotReady.
	for _, body := range []string{maleThird, missingAge, "not json"} {
		_, err := m.PredictSurvival(context.Background(), []byte(body))
		if !IsNotReady(err) {
			t.Fatalf("body %q: expected not ready, got %v", body, err)
		}
	}
	if p.calls.Load() != 0 {
		t.Fatalf("predictor must not run before load")
	}
	if st := m.Status(); st.NotReadyTotal != 3 {
		t.Fatalf("not ready counter: %d", st.NotReadyTotal)
	}
}

func TestLoadFailure_IsTerminal(t *testing.T) {
	pub := NewMemoryPublisher()
	m := newTestManager(t, ManagerConfig{Loader: failingLoader(errArtifactMissing), Publisher: pub})
	err := m.Load(context.Background())
	if !IsModelLoad(err) || !errors.Is(err, errArtifactMissing) {
		t.Fatalf("expected ModelLoadError wrapping cause, got %v", err)
	}
	if m.State() != StateFailed || m.Ready() {
		t.Fatalf("state=%s", m.State())
	}
	_, err = m.PredictSurvival(context.Background(), []byte(maleThird))
	var nr *ServiceNotReadyError
	if !errors.As(err, &nr) || nr.State != StateFailed || !nr.Retryable() {
		t.Fatalf("expected ServiceNotReadyError(failed), got %v", err)
	}
	// No retry: a second Load returns the first outcome.
	if err2 := m.Load(context.Background()); err2 != err {
		t.Fatalf("second Load returned %v", err2)
	}
	names := pub.Names()
	if len(names) != 2 || names[0] != EventLoadStart || names[1] != EventLoadFailed {
		t.Fatalf("events=%v", names)
	}
	if snap := m.Snapshot(); snap.Err == "" || snap.Model != nil {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestLoad_RunsOnce(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	p := &fakePredictor{}
	m := newTestManager(t, ManagerConfig{Loader: LoaderFunc(func(ctx context.Context) (model.Predictor, types.ModelInfo, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		return p, types.ModelInfo{}, nil
	})})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Load(context.Background()); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Fatalf("loader ran %d times", calls)
	}
	if !m.Ready() {
		t.Fatalf("expected ready")
	}
}

func TestLoad_LoaderPanicFails(t *testing.T) {
	m := newTestManager(t, ManagerConfig{Loader: LoaderFunc(func(context.Context) (model.Predictor, types.ModelInfo, error) {
		panic("corrupt")
	})})
	if err := m.Load(context.Background()); !IsModelLoad(err) {
		t.Fatalf("expected model load error, got %v", err)
	}
	if m.State() != StateFailed {
		t.Fatalf("state=%s", m.State())
	}
}

func TestLoad_NilPredictorFails(t *testing.T) {
	m := newTestManager(t, ManagerConfig{Loader: fakeLoader(nil)})
	if err := m.Load(context.Background()); !IsModelLoad(err) {
		t.Fatalf("expected model load error, got %v", err)
	}
}

func TestPredict_PredictorErrorAndPanic(t *testing.T) {
	cases := []struct {
		name string
		p    *fakePredictor
	}{
		{"error", &fakePredictor{err: model.ErrNumeric}},
		{"panic", &fakePredictor{panic: true}},
		{"unmapped", &fakePredictor{label: intPtr(7)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := readyManager(t, tc.p)
			_, err := m.PredictSurvival(context.Background(), []byte(maleThird))
			if !IsPrediction(err) || Category(err) != CategoryPrediction {
				t.Fatalf("expected prediction error, got %v", err)
			}
			if tc.p.err != nil && !errors.Is(err, tc.p.err) {
				t.Fatalf("cause lost: %v", err)
			}
			if st := m.Status(); st.PredictionErrorsTotal != 1 {
				t.Fatalf("counter: %+v", st)
			}
			// Manager keeps serving after a prediction failure.
			if !m.Ready() {
				t.Fatalf("manager should stay ready")
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestPredict_Typed(t *testing.T) {
	m := readyManager(t, &fakePredictor{})
	p := schema.Example
	got, err := m.Predict(context.Background(), p)
	if err != nil || got.Prediction != 0 {
		t.Fatalf("got %+v err %v", got, err)
	}
	p.Embarked = "X"
	if _, err := m.Predict(context.Background(), p); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPredict_DeterministicAndConcurrent(t *testing.T) {
	m := readyManager(t, &fakePredictor{})
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, want := maleThird, 0
			if i%2 == 1 {
				body, want = femaleFirst, 1
			}
			got, err := m.PredictSurvival(context.Background(), []byte(body))
			if err != nil {
				errs <- err
				return
			}
			if got.Prediction != want {
				errs <- errors.New("non-deterministic prediction")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if st := m.Status(); st.PredictionsTotal != 64 {
		t.Fatalf("predictions=%d", st.PredictionsTotal)
	}
}

func TestLoad_FromArtifactDirectory(t *testing.T) {
	dir := writeArtifact(t)
	ref, err := registry.ParseReference(dir, registry.EmptyPathReject)
	if err != nil {
		t.Fatalf("ParseReference: %v", err)
	}
	pub := NewMemoryPublisher()
	m := newTestManager(t, ManagerConfig{Reference: ref, Publisher: pub})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	info, ok := m.Info()
	if !ok || info.ModelType != "decision_tree" || info.URI != dir {
		t.Fatalf("info=%+v", info)
	}
	if info.Location != dir {
		t.Fatalf("location=%q want %q", info.Location, dir)
	}
	got, err := m.PredictSurvival(context.Background(), []byte(femaleFirst))
	if err != nil || got.SurvivalStatus != "Survived" {
		t.Fatalf("female first: %+v %v", got, err)
	}
	got, err = m.PredictSurvival(context.Background(), []byte(maleThird))
	if err != nil || got.SurvivalStatus != "Not Survived" {
		t.Fatalf("male third: %+v %v", got, err)
	}
	if names := pub.Names(); len(names) != 2 || names[1] != EventLoadDone {
		t.Fatalf("events=%v", names)
	}
}

func TestLoad_MissingArtifactFails(t *testing.T) {
	ref, _ := registry.ParseReference(filepath.Join(t.TempDir(), "nope"), registry.EmptyPathReject)
	m := newTestManager(t, ManagerConfig{Reference: ref})
	err := m.Load(context.Background())
	if !IsModelLoad(err) || !errors.Is(err, registry.ErrArtifactNotFound) {
		t.Fatalf("expected artifact not found, got %v", err)
	}
}

func TestLoad_RunReferenceWithoutStore(t *testing.T) {
	ref, err := registry.ParseReference("runs:/abc/model", registry.EmptyPathReject)
	if err != nil {
		t.Fatalf("ParseReference: %v", err)
	}
	m := newTestManager(t, ManagerConfig{Reference: ref})
	if err := m.Load(context.Background()); !errors.Is(err, registry.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestCategory(t *testing.T) {
	cases := map[string]error{
		CategoryNotReady:   &ServiceNotReadyError{State: StateNotReady},
		CategoryValidation: &schema.ValidationError{},
		CategoryPrediction: &PredictionError{Err: errArtifactMissing},
		CategoryModelLoad:  &ModelLoadError{Ref: "x", Err: errArtifactMissing},
		CategoryInternal:   errArtifactMissing,
	}
	for want, err := range cases {
		if got := Category(err); got != want {
			t.Fatalf("Category(%v)=%s want %s", err, got, want)
		}
	}
}

type closingStore struct {
	registry.Store
	closed bool
}

func (s *closingStore) Close() error {
	s.closed = true
	return s.Store.Close()
}

func TestLoad_OpensAndClosesStore(t *testing.T) {
	root := t.TempDir()
	runID := "0123456789abcdef"
	runDir := filepath.Join(root, "1", runID)
	art := writeArtifact(t)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := "run_id: " + runID + "\nartifact_uri: " + filepath.Dir(art) + "\nlifecycle_stage: active\n"
	if err := os.WriteFile(filepath.Join(runDir, "meta.yaml"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	ref, err := registry.NewRunReference(runID, filepath.Base(art), registry.EmptyPathReject)
	if err != nil {
		t.Fatalf("NewRunReference: %v", err)
	}
	var opened *closingStore
	m := newTestManager(t, ManagerConfig{Reference: ref, OpenStore: func() (registry.Store, error) {
		fs, err := registry.NewFileStore(root)
		if err != nil {
			return nil, err
		}
		opened = &closingStore{Store: fs}
		return opened, nil
	}})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opened == nil || !opened.closed {
		t.Fatalf("store should be opened and closed by Load")
	}
	if info, _ := m.Info(); info.RunID != runID {
		t.Fatalf("info=%+v", info)
	}
}

func TestLoad_OpenStoreFailureIsLoadError(t *testing.T) {
	ref, _ := registry.NewRunReference("abc", "model", registry.EmptyPathReject)
	m := newTestManager(t, ManagerConfig{Reference: ref, OpenStore: func() (registry.Store, error) {
		return nil, registry.ErrUnsupportedScheme
	}})
	if err := m.Load(context.Background()); !IsModelLoad(err) || !errors.Is(err, registry.ErrUnsupportedScheme) {
		t.Fatalf("expected wrapped open failure, got %v", err)
	}
	if m.State() != StateFailed {
		t.Fatalf("state=%s", m.State())
	}
}

func TestCheckReady(t *testing.T) {
	m := newTestManager(t, ManagerConfig{Loader: fakeLoader(&fakePredictor{})})
	err := m.CheckReady()
	var nr *ServiceNotReadyError
	if !errors.As(err, &nr) || nr.State != StateNotReady {
		t.Fatalf("expected ServiceNotReadyError(not_ready), got %v", err)
	}
	if st := m.Status(); st.NotReadyTotal != 1 {
		t.Fatalf("not_ready_total=%d", st.NotReadyTotal)
	}
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.CheckReady(); err != nil {
		t.Fatalf("ready manager rejected: %v", err)
	}

	failed := newTestManager(t, ManagerConfig{Loader: failingLoader(errArtifactMissing)})
	_ = failed.Load(context.Background())
	if err := failed.CheckReady(); !errors.As(err, &nr) || nr.State != StateFailed {
		t.Fatalf("expected ServiceNotReadyError(failed), got %v", err)
	}
}
