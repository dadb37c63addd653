package registry

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// RunScheme prefixes references to an artifact inside a tracking run.
const RunScheme = "runs:/"

// EmptyPathPolicy decides what an empty artifact path in a run reference means.
type EmptyPathPolicy string

const (
	// EmptyPathReject treats an empty artifact path as a misconfiguration.
	EmptyPathReject EmptyPathPolicy = "reject"
	// EmptyPathRunRoot resolves an empty artifact path to the run's artifact root.
	EmptyPathRunRoot EmptyPathPolicy = "run_root"
)

// ParsePolicy validates a configured policy; "" selects EmptyPathReject.
func ParsePolicy(s string) (EmptyPathPolicy, error) {
	switch EmptyPathPolicy(s) {
	case "", EmptyPathReject:
		return EmptyPathReject, nil
	case EmptyPathRunRoot:
		return EmptyPathRunRoot, nil
	default:
		return "", fmt.Errorf("unknown empty artifact path policy %q (want reject or run_root)", s)
	}
}

var (
	ErrEmptyReference    = errors.New("empty model reference")
	ErrEmptyArtifactPath = errors.New("empty artifact path")
	ErrBadReference      = errors.New("malformed model reference")
)

// Reference is an immutable pointer to a persisted model artifact: either an
// artifact path inside a tracking run, or a local path.
type Reference struct {
	raw          string
	runID        string
	artifactPath string
	local        string
}

// ParseReference parses "runs:/<run_id>/<artifact_path>" or a local path /
// file:// URI.
func ParseReference(uri string, policy EmptyPathPolicy) (Reference, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Reference{}, ErrEmptyReference
	}
	if !strings.HasPrefix(uri, RunScheme) {
		return Reference{raw: uri, local: uri}, nil
	}
	rest := strings.TrimLeft(strings.TrimPrefix(uri, RunScheme), "/")
	runID, artifactPath, _ := strings.Cut(rest, "/")
	return NewRunReference(runID, artifactPath, policy)
}

// NewRunReference builds a run reference from its parts.
func NewRunReference(runID, artifactPath string, policy EmptyPathPolicy) (Reference, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return Reference{}, fmt.Errorf("%w: missing run id", ErrBadReference)
	}
	if strings.ContainsAny(runID, `/\ `) || runID == "." || runID == ".." {
		return Reference{}, fmt.Errorf("%w: invalid run id %q", ErrBadReference, runID)
	}
	p := strings.Trim(strings.TrimSpace(artifactPath), "/")
	if p != "" {
		p = path.Clean(p)
		if p == ".." || strings.HasPrefix(p, "../") {
			return Reference{}, fmt.Errorf("%w: artifact path %q escapes the run", ErrBadReference, artifactPath)
		}
		if p == "." {
			p = ""
		}
	}
	if p == "" && policy != EmptyPathRunRoot {
		return Reference{}, fmt.Errorf("%w in run %s (set empty_artifact_path: run_root to load the run's artifact root)", ErrEmptyArtifactPath, runID)
	}
	return Reference{raw: RunScheme + runID + "/" + p, runID: runID, artifactPath: p}, nil
}

// IsRun reports whether the reference needs a tracking store to resolve.
func (r Reference) IsRun() bool { return r.runID != "" }

// RunID returns the tracking run id, empty for local references.
func (r Reference) RunID() string { return r.runID }

// ArtifactPath returns the slash-separated path inside the run.
func (r Reference) ArtifactPath() string { return r.artifactPath }

// LocalPath returns the path of a local reference.
func (r Reference) LocalPath() string { return r.local }

func (r Reference) String() string { return r.raw }
