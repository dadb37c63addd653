package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// FormatVersion is the artifact layout this package reads.
const FormatVersion = 1

// Estimator type names as written by the training pipeline.
const (
	TypeDecisionTree       = "decision_tree"
	TypeRandomForest       = "random_forest"
	TypeLogisticRegression = "logistic_regression"
)

// Artifact is the serialized form of a Pipeline.
type Artifact struct {
	FormatVersion int                 `json:"format_version"`
	ModelType     string              `json:"model_type"`
	Numeric       []NumericColumn     `json:"numeric"`
	Categorical   []CategoricalColumn `json:"categorical"`
	Estimator     json.RawMessage     `json:"estimator"`
}

// Decode reads an artifact and builds a validated Pipeline.
func Decode(r io.Reader) (*Pipeline, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return a.Build()
}

// Build validates the artifact and constructs its Pipeline.
func (a Artifact) Build() (*Pipeline, error) {
	if a.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.FormatVersion)
	}
	if len(a.Estimator) == 0 {
		return nil, fmt.Errorf("%w: missing estimator", ErrInvalidArtifact)
	}
	width := len(a.Numeric)
	for _, c := range a.Categorical {
		width += len(c.Categories)
	}

	var (
		est Estimator
		err error
	)
	switch a.ModelType {
	case TypeDecisionTree:
		var dt DecisionTree
		if err = json.Unmarshal(a.Estimator, &dt); err == nil {
			err = dt.validate(width)
		}
		est = &dt
	case TypeRandomForest:
		var rf RandomForest
		if err = json.Unmarshal(a.Estimator, &rf); err == nil {
			err = rf.validate(width)
		}
		est = &rf
	case TypeLogisticRegression:
		var lr LogisticRegression
		if err = json.Unmarshal(a.Estimator, &lr); err == nil {
			err = lr.validate(width)
		}
		est = &lr
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModelType, a.ModelType)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, a.ModelType, err)
	}
	return NewPipeline(a.ModelType, a.Numeric, a.Categorical, est)
}
