package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"survivald/internal/httpapi"
	"survivald/internal/manager"
	"survivald/internal/registry"
)

const runID = "5f1c0a6e2b7d4c3a9e8f7a6b5c4d3e2f"

const mlmodelYAML = `artifact_path: model
flavors:
  go_tabular:
    data: model.json
    model_type: decision_tree
    format_version: 1
`

// writeArtifactDir writes MLmodel plus the decision tree fixture into dir.
func writeArtifactDir(t *testing.T, dir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "model", "testdata", "titanic_tree.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	writeFile(t, filepath.Join(dir, registry.MLmodelFile), []byte(mlmodelYAML))
	writeFile(t, filepath.Join(dir, "model.json"), data)
}

func writeFile(t *testing.T, p string, b []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", p, err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

// createMLRuns lays out a file tracking store with one active run whose
// "model" artifact holds the fixture pipeline.
func createMLRuns(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	runDir := filepath.Join(root, "1", runID)
	writeFile(t, filepath.Join(root, "1", "meta.yaml"), []byte("name: titanic\n"))
	meta := "run_id: " + runID + "\nexperiment_id: '1'\nartifact_uri: file://" +
		filepath.ToSlash(filepath.Join(runDir, "artifacts")) + "\nlifecycle_stage: active\n"
	writeFile(t, filepath.Join(runDir, "meta.yaml"), []byte(meta))
	writeArtifactDir(t, filepath.Join(runDir, "artifacts", "model"))
	return root
}

// createBackendDB writes an MLflow-style sqlite backend whose single run
// points at artifactRoot.
func createBackendDB(t *testing.T, artifactRoot string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mlflow.db")
	db, err := sql.Open("sqlite3", p)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE runs (
		run_uuid VARCHAR(32) NOT NULL PRIMARY KEY,
		name VARCHAR(250),
		experiment_id INTEGER,
		status VARCHAR(9),
		artifact_uri VARCHAR(200),
		lifecycle_stage VARCHAR(20)
	)`); err != nil {
		t.Fatalf("create runs: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO runs (run_uuid, experiment_id, status, artifact_uri, lifecycle_stage) VALUES (?, 1, 'FINISHED', ?, 'active')`,
		runID, "file://"+filepath.ToSlash(artifactRoot)); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	return p
}

// newServer wires a manager for modelURI against trackingURI and serves it.
// The model is not loaded; callers decide when to call Load.
func newServer(t *testing.T, modelURI, trackingURI string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	ref, err := registry.ParseReference(modelURI, registry.EmptyPathReject)
	if err != nil {
		t.Fatalf("parse reference: %v", err)
	}
	mgr, err := manager.NewWithConfig(manager.ManagerConfig{
		Reference: ref,
		OpenStore: func() (registry.Store, error) {
			return registry.OpenStore(trackingURI, registry.StoreOptions{})
		},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

// newLoadedServer is newServer followed by a successful Load.
func newLoadedServer(t *testing.T, modelURI, trackingURI string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	srv, mgr := newServer(t, modelURI, trackingURI)
	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func postPredict(t *testing.T, base, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(base+"/predict", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /predict: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
