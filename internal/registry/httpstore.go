package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTimeout = 60 * time.Second

// HTTPStore resolves runs through an MLflow tracking server and downloads the
// artifact tree into a local cache directory.
type HTTPStore struct {
	base     *url.URL
	client   *http.Client
	cacheDir string
	ownCache bool
}

// NewHTTPStore returns a store for the tracking server at baseURL.
func NewHTTPStore(baseURL string, opts StoreOptions) (*HTTPStore, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: bad tracking url %q", ErrUnsupportedScheme, baseURL)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPStore{base: u, client: client, cacheDir: opts.CacheDir}, nil
}

type runInfo struct {
	RunID          string `json:"run_id"`
	ArtifactURI    string `json:"artifact_uri"`
	LifecycleStage string `json:"lifecycle_stage"`
}

type getRunResponse struct {
	Run struct {
		Info runInfo `json:"info"`
	} `json:"run"`
}

type fileInfo struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

type listArtifactsResponse struct {
	Files []fileInfo `json:"files"`
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (s *HTTPStore) Resolve(ctx context.Context, ref Reference) (string, error) {
	var run getRunResponse
	if err := s.getJSON(ctx, "/api/2.0/mlflow/runs/get", url.Values{"run_id": {ref.RunID()}}, &run); err != nil {
		return "", err
	}
	if run.Run.Info.LifecycleStage == "deleted" {
		return "", fmt.Errorf("%w: %s", ErrRunDeleted, ref.RunID())
	}

	files, err := s.listTree(ctx, ref.RunID(), ref.ArtifactPath())
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		// The artifact path may name a single file.
		if ref.ArtifactPath() == "" {
			return "", fmt.Errorf("%w: run %s has no artifacts", ErrArtifactNotFound, ref.RunID())
		}
		files = []string{ref.ArtifactPath()}
	}

	if err := s.ensureCache(); err != nil {
		return "", err
	}
	runDir := filepath.Join(s.cacheDir, ref.RunID())
	for _, f := range files {
		if err := s.download(ctx, ref.RunID(), f, filepath.Join(runDir, filepath.FromSlash(f))); err != nil {
			return "", err
		}
	}
	return filepath.Join(runDir, filepath.FromSlash(ref.ArtifactPath())), nil
}

// listTree returns every file below dir, depth first.
func (s *HTTPStore) listTree(ctx context.Context, runID, dir string) ([]string, error) {
	q := url.Values{"run_id": {runID}}
	if dir != "" {
		q.Set("path", dir)
	}
	var resp listArtifactsResponse
	if err := s.getJSON(ctx, "/api/2.0/mlflow/artifacts/list", q, &resp); err != nil {
		return nil, err
	}
	var out []string
	for _, f := range resp.Files {
		clean := path.Clean(f.Path)
		if strings.HasPrefix(clean, "../") || clean == ".." || path.IsAbs(clean) {
			return nil, fmt.Errorf("%w: server listed unsafe path %q", ErrArtifactNotFound, f.Path)
		}
		if dir != "" && clean != dir && !strings.HasPrefix(clean, dir+"/") {
			return nil, fmt.Errorf("%w: server listed %q outside %q", ErrArtifactNotFound, f.Path, dir)
		}
		if f.IsDir {
			sub, err := s.listTree(ctx, runID, clean)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, clean)
	}
	return out, nil
}

func (s *HTTPStore) download(ctx context.Context, runID, artifact, dst string) error {
	u := s.endpoint("/get-artifact", url.Values{"path": {artifact}, "run_uuid": {runID}})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s/%s", ErrArtifactNotFound, runID, artifact)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: get-artifact %s: HTTP %d", ErrStoreUnavailable, artifact, resp.StatusCode)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("%w: download %s: %v", ErrStoreUnavailable, artifact, err)
	}
	return f.Close()
}

func (s *HTTPStore) getJSON(ctx context.Context, p string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(p, q), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, p, err)
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		_ = json.Unmarshal(body, &ae)
		if resp.StatusCode == http.StatusNotFound || ae.ErrorCode == "RESOURCE_DOES_NOT_EXIST" {
			return fmt.Errorf("%w: %s %s", ErrRunNotFound, q.Get("run_id"), ae.Message)
		}
		return fmt.Errorf("%w: %s: HTTP %d %s", ErrStoreUnavailable, p, resp.StatusCode, ae.Message)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrStoreUnavailable, p, err)
	}
	return nil
}

func (s *HTTPStore) endpoint(p string, q url.Values) string {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *HTTPStore) ensureCache() error {
	if s.cacheDir != "" {
		return os.MkdirAll(s.cacheDir, 0o755)
	}
	d, err := os.MkdirTemp("", "survivald-artifacts-*")
	if err != nil {
		return err
	}
	s.cacheDir = d
	s.ownCache = true
	return nil
}

// Close removes the cache directory when the store created it.
func (s *HTTPStore) Close() error {
	if s.ownCache && s.cacheDir != "" {
		return os.RemoveAll(s.cacheDir)
	}
	return nil
}
