package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"survivald/internal/common/fsutil"
	"survivald/internal/model"
)

const (
	// MLmodelFile is the artifact descriptor written next to the model data.
	MLmodelFile = "MLmodel"
	// FlavorName is the descriptor flavor this service can load.
	FlavorName = "go_tabular"
	// defaultDataFile is used when the flavor omits data.
	defaultDataFile = "model.json"
)

var ErrIncompatibleArtifact = errors.New("incompatible model artifact")

// MLmodel is the parsed artifact descriptor.
type MLmodel struct {
	ArtifactPath   string               `yaml:"artifact_path"`
	RunID          string               `yaml:"run_id"`
	UTCTimeCreated string               `yaml:"utc_time_created"`
	Flavors        map[string]yaml.Node `yaml:"flavors"`
}

// TabularFlavor is the go_tabular flavor block.
type TabularFlavor struct {
	Data          string `yaml:"data"`
	ModelType     string `yaml:"model_type"`
	FormatVersion int    `yaml:"format_version"`
}

// Artifact is a loaded model with the location it came from.
type Artifact struct {
	Pipeline *model.Pipeline
	Location string
	Meta     *MLmodel
}

// Load resolves ref through store (only needed for run references) and
// decodes the predictor. store may be nil for local references.
func Load(ctx context.Context, store Store, ref Reference) (*Artifact, error) {
	var (
		loc string
		err error
	)
	if ref.IsRun() {
		if store == nil {
			return nil, fmt.Errorf("%w: no tracking store configured for %s", ErrStoreUnavailable, ref)
		}
		loc, err = store.Resolve(ctx, ref)
	} else {
		loc, err = fsutil.LocalPath(ref.LocalPath())
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadPath(loc)
}

// LoadPath loads an artifact directory (with an MLmodel descriptor) or a bare
// artifact JSON file.
func LoadPath(loc string) (*Artifact, error) {
	fi, err := os.Stat(loc)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, loc)
	}
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		if !strings.EqualFold(filepath.Ext(loc), ".json") {
			return nil, fmt.Errorf("%w: %s is not a directory or .json artifact", ErrIncompatibleArtifact, loc)
		}
		p, err := decodeFile(loc)
		if err != nil {
			return nil, err
		}
		return &Artifact{Pipeline: p, Location: loc}, nil
	}

	meta, flavor, err := readMLmodel(filepath.Join(loc, MLmodelFile))
	if err != nil {
		return nil, err
	}
	data := flavor.Data
	if data == "" {
		data = defaultDataFile
	}
	dataPath := filepath.Join(loc, filepath.FromSlash(data))
	rel, err := filepath.Rel(loc, dataPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: flavor data %q escapes the artifact", ErrIncompatibleArtifact, data)
	}
	p, err := decodeFile(dataPath)
	if err != nil {
		return nil, err
	}
	if flavor.ModelType != "" && flavor.ModelType != p.Kind() {
		return nil, fmt.Errorf("%w: MLmodel declares %s but data is %s", ErrIncompatibleArtifact, flavor.ModelType, p.Kind())
	}
	return &Artifact{Pipeline: p, Location: loc, Meta: meta}, nil
}

func readMLmodel(path string) (*MLmodel, TabularFlavor, error) {
	var flavor TabularFlavor
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, flavor, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	if err != nil {
		return nil, flavor, err
	}
	var meta MLmodel
	if err := yaml.Unmarshal(b, &meta); err != nil {
		return nil, flavor, fmt.Errorf("%w: parse %s: %v", ErrIncompatibleArtifact, path, err)
	}
	node, ok := meta.Flavors[FlavorName]
	if !ok {
		names := make([]string, 0, len(meta.Flavors))
		for n := range meta.Flavors {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, flavor, fmt.Errorf("%w: no %s flavor (found: %s)", ErrIncompatibleArtifact, FlavorName, strings.Join(names, ", "))
	}
	if err := node.Decode(&flavor); err != nil {
		return nil, flavor, fmt.Errorf("%w: %s flavor: %v", ErrIncompatibleArtifact, FlavorName, err)
	}
	if flavor.FormatVersion != 0 && flavor.FormatVersion != model.FormatVersion {
		return nil, flavor, fmt.Errorf("%w: format_version %d", ErrIncompatibleArtifact, flavor.FormatVersion)
	}
	return &meta, flavor, nil
}

func decodeFile(path string) (*model.Pipeline, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := model.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIncompatibleArtifact, path, err)
	}
	return p, nil
}
