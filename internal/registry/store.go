package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrRunNotFound       = errors.New("run not found")
	ErrRunDeleted        = errors.New("run is deleted")
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrUnsupportedScheme = errors.New("unsupported tracking uri scheme")
	ErrStoreUnavailable  = errors.New("tracking store unavailable")
)

// Store resolves a run reference to a local artifact location.
type Store interface {
	// Resolve returns a local directory or file holding the artifact.
	Resolve(ctx context.Context, ref Reference) (string, error)
	Close() error
}

// StoreOptions tunes remote stores.
type StoreOptions struct {
	// HTTPClient is used by the REST store; nil uses a default client.
	HTTPClient *http.Client
	// CacheDir receives downloaded artifacts; empty creates a temp dir.
	CacheDir string
}

// OpenStore selects a store from a tracking URI:
//
//	""                   ./mlruns file store
//	/path, file:///path  file store rooted at path
//	sqlite:///path.db    MLflow backend database
//	http(s)://host:port  MLflow tracking server REST API
func OpenStore(trackingURI string, opts StoreOptions) (Store, error) {
	u := strings.TrimSpace(trackingURI)
	switch {
	case u == "":
		return NewFileStore("mlruns")
	case strings.HasPrefix(u, "sqlite:"):
		return OpenSQLStore(sqlitePath(u))
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		return NewHTTPStore(u, opts)
	case strings.Contains(u, "://") && !strings.HasPrefix(u, "file://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u)
	default:
		return NewFileStore(u)
	}
}

// sqlitePath maps SQLAlchemy-style sqlite URIs to a file path:
// sqlite:///rel.db is relative, sqlite:////abs.db is absolute.
func sqlitePath(uri string) string {
	p := strings.TrimPrefix(uri, "sqlite:")
	if strings.HasPrefix(p, "///") {
		return p[3:]
	}
	return strings.TrimPrefix(p, "//")
}
