package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"survivald/internal/model"
	"survivald/pkg/types"
)

const (
	maleThird   = `{"Pclass":3,"Sex":"male","Age":28.0,"SibSp":0,"Parch":0,"Fare":10.0,"Embarked":"S"}`
	femaleFirst = `{"Pclass":1,"Sex":"female","Age":30.0,"SibSp":0,"Parch":0,"Fare":100.0,"Embarked":"C"}`
	missingAge  = `{"Pclass":3,"Sex":"male","SibSp":0,"Parch":0,"Fare":10.0,"Embarked":"S"}`
)

// fakePredictor returns 1 for females, 0 otherwise, and counts invocations.
type fakePredictor struct {
	calls atomic.Int32
	label *int
	err   error
	panic bool
}

func (f *fakePredictor) Predict(row model.Row) (int, error) {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return 0, f.err
	}
	if f.label != nil {
		return *f.label, nil
	}
	if v, _ := row.Lookup("Sex"); v == "female" {
		return 1, nil
	}
	return 0, nil
}

func fakeLoader(p model.Predictor) LoaderFunc {
	return func(context.Context) (model.Predictor, types.ModelInfo, error) {
		return p, types.ModelInfo{ModelType: "fake"}, nil
	}
}

func failingLoader(err error) LoaderFunc {
	return func(context.Context) (model.Predictor, types.ModelInfo, error) {
		return nil, types.ModelInfo{}, err
	}
}

var errArtifactMissing = errors.New("artifact missing")

func newTestManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	m, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	return m
}

// readyManager returns a loaded manager backed by p.
func readyManager(t *testing.T, p model.Predictor) *Manager {
	t.Helper()
	m := newTestManager(t, ManagerConfig{Loader: fakeLoader(p)})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

const mlmodelYAML = `artifact_path: model
flavors:
  go_tabular:
    data: model.json
    model_type: decision_tree
    format_version: 1
`

// writeArtifact copies the model package fixture into an MLmodel directory.
func writeArtifact(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "model", "testdata", "titanic_tree.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "MLmodel"), []byte(mlmodelYAML), 0o644); err != nil {
		t.Fatalf("write MLmodel: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "model.json"), data, 0o644); err != nil {
		t.Fatalf("write model.json: %v", err)
	}
	return dir
}
