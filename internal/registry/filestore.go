package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"survivald/internal/common/fsutil"
)

// runMeta is the subset of a run's meta.yaml the store needs.
type runMeta struct {
	RunID          string `yaml:"run_id"`
	ExperimentID   string `yaml:"experiment_id"`
	ArtifactURI    string `yaml:"artifact_uri"`
	LifecycleStage string `yaml:"lifecycle_stage"`
}

// FileStore resolves runs inside a local mlruns directory laid out as
// <root>/<experiment_id>/<run_id>/{meta.yaml,artifacts/}.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir ('~' and file:// accepted).
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := fsutil.LocalPath(dir)
	if err != nil {
		return nil, err
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute mlruns directory.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Resolve(ctx context.Context, ref Reference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	runDir, err := s.findRun(ref.RunID())
	if err != nil {
		return "", err
	}
	meta, err := readRunMeta(filepath.Join(runDir, "meta.yaml"))
	if err != nil {
		return "", err
	}
	if meta.LifecycleStage == "deleted" {
		return "", fmt.Errorf("%w: %s", ErrRunDeleted, ref.RunID())
	}
	root := filepath.Join(runDir, "artifacts")
	if meta.ArtifactURI != "" {
		// Runs copied between machines keep a stale absolute artifact_uri;
		// fall back to the run's own artifacts directory.
		if p, err := fsutil.LocalPath(meta.ArtifactURI); err == nil && fsutil.IsDir(p) {
			root = p
		}
	}
	p := filepath.Join(root, filepath.FromSlash(ref.ArtifactPath()))
	if !fsutil.PathExists(p) {
		return "", fmt.Errorf("%w: %s (looked in %s)", ErrArtifactNotFound, ref, p)
	}
	return p, nil
}

func (s *FileStore) findRun(runID string) (string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, s.root, err)
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ".trash" {
			continue
		}
		p := filepath.Join(s.root, e.Name(), runID)
		if fsutil.IsDir(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrRunNotFound, runID, s.root)
}

func readRunMeta(path string) (runMeta, error) {
	var m runMeta
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("read run meta: %w", err)
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func (s *FileStore) Close() error { return nil }
