package registry

import (
	"os"
	"path/filepath"
	"testing"
)

const testRunID = "e29e2b05b8e341d7809c89725c6797e9"

// treeArtifact predicts 1 for first/second class females, else 0.
const treeArtifact = `{
  "format_version": 1,
  "model_type": "decision_tree",
  "numeric": [{"name": "Pclass", "scale": 1}, {"name": "Age", "scale": 1}],
  "categorical": [{"name": "Sex", "categories": ["female", "male"]}],
  "estimator": {"nodes": [
    {"feature_idx": 2, "threshold": 0.5, "left_child": 1, "right_child": 2},
    {"is_leaf": true, "class_label": 0},
    {"feature_idx": 0, "threshold": 2.5, "left_child": 3, "right_child": 4},
    {"is_leaf": true, "class_label": 1},
    {"is_leaf": true, "class_label": 0}
  ]}
}`

const mlmodelYAML = `artifact_path: model
run_id: e29e2b05b8e341d7809c89725c6797e9
utc_time_created: '2025-05-01 10:00:00.000000'
flavors:
  python_function:
    loader_module: mlflow.sklearn
  go_tabular:
    data: model.json
    model_type: decision_tree
    format_version: 1
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeArtifactDir writes MLmodel + model.json into dir.
func writeArtifactDir(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, MLmodelFile), mlmodelYAML)
	writeFile(t, filepath.Join(dir, "model.json"), treeArtifact)
}

// writeMLRuns builds <root>/1/<run>/{meta.yaml,artifacts/model/...} and
// returns root.
func writeMLRuns(t *testing.T, stage string) string {
	t.Helper()
	root := t.TempDir()
	runDir := filepath.Join(root, "1", testRunID)
	writeFile(t, filepath.Join(root, "0", "meta.yaml"), "name: Default\n")
	writeFile(t, filepath.Join(runDir, "meta.yaml"),
		"run_id: "+testRunID+"\nexperiment_id: '1'\nartifact_uri: file://"+filepath.ToSlash(filepath.Join(runDir, "artifacts"))+"\nlifecycle_stage: "+stage+"\n")
	writeArtifactDir(t, filepath.Join(runDir, "artifacts", "model"))
	return root
}
