package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"survivald/internal/common/fsutil"
)

// SQLStore resolves runs through an MLflow backend-store database
// (the runs table written by a sqlite:/// tracking URI).
type SQLStore struct {
	db   *sql.DB
	path string
}

// OpenSQLStore opens the database read-only. The file must exist.
func OpenSQLStore(path string) (*SQLStore, error) {
	p, err := fsutil.LocalPath(path)
	if err != nil {
		return nil, err
	}
	if !fsutil.PathExists(p) {
		return nil, fmt.Errorf("%w: database %s does not exist", ErrStoreUnavailable, p)
	}
	db, err := sql.Open("sqlite3", "file:"+filepath.ToSlash(p)+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreUnavailable, p, err)
	}
	return &SQLStore{db: db, path: p}, nil
}

func (s *SQLStore) Resolve(ctx context.Context, ref Reference) (string, error) {
	var artifactURI, stage sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT artifact_uri, lifecycle_stage FROM runs WHERE run_uuid = ?`, ref.RunID(),
	).Scan(&artifactURI, &stage)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s in %s", ErrRunNotFound, ref.RunID(), s.path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: query %s: %v", ErrStoreUnavailable, s.path, err)
	}
	if stage.String == "deleted" {
		return "", fmt.Errorf("%w: %s", ErrRunDeleted, ref.RunID())
	}
	if artifactURI.String == "" {
		return "", fmt.Errorf("%w: run %s has no artifact_uri", ErrArtifactNotFound, ref.RunID())
	}
	root, err := fsutil.LocalPath(artifactURI.String)
	if errors.Is(err, fsutil.ErrNotLocal) {
		return "", fmt.Errorf("%w: artifact root %s", ErrUnsupportedScheme, artifactURI.String)
	}
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, filepath.FromSlash(ref.ArtifactPath()))
	if !fsutil.PathExists(p) {
		return "", fmt.Errorf("%w: %s (looked in %s)", ErrArtifactNotFound, ref, p)
	}
	return p, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
