package model

import (
	"fmt"
	"math"
	"strconv"
)

// Handling modes for categories not seen during training.
const (
	HandleUnknownIgnore = "ignore"
	HandleUnknownError  = "error"
)

// NumericColumn is imputed (NaN -> Impute) and standardized ((x-Mean)/Scale).
type NumericColumn struct {
	Name   string  `json:"name"`
	Impute float64 `json:"impute"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// CategoricalColumn is one-hot encoded over Categories.
type CategoricalColumn struct {
	Name          string   `json:"name"`
	Categories    []string `json:"categories"`
	HandleUnknown string   `json:"handle_unknown,omitempty"`
}

// Estimator classifies a dense feature vector.
type Estimator interface {
	Predict(x []float64) (int, error)
}

// Pipeline transforms a Row into a feature vector and classifies it. Numeric
// columns come first, then one-hot blocks of the categorical columns, each in
// artifact order.
type Pipeline struct {
	kind        string
	numeric     []NumericColumn
	categorical []CategoricalColumn
	est         Estimator
	width       int
}

// NewPipeline builds a pipeline and validates its columns.
func NewPipeline(kind string, numeric []NumericColumn, categorical []CategoricalColumn, est Estimator) (*Pipeline, error) {
	if est == nil {
		return nil, fmt.Errorf("%w: no estimator", ErrInvalidArtifact)
	}
	seen := make(map[string]bool, len(numeric)+len(categorical))
	width := 0
	for _, c := range numeric {
		if c.Name == "" || seen[c.Name] {
			return nil, fmt.Errorf("%w: bad or duplicate column %q", ErrInvalidArtifact, c.Name)
		}
		seen[c.Name] = true
		width++
	}
	cats := make([]CategoricalColumn, len(categorical))
	for i, c := range categorical {
		if c.Name == "" || seen[c.Name] {
			return nil, fmt.Errorf("%w: bad or duplicate column %q", ErrInvalidArtifact, c.Name)
		}
		if len(c.Categories) == 0 {
			return nil, fmt.Errorf("%w: column %q has no categories", ErrInvalidArtifact, c.Name)
		}
		switch c.HandleUnknown {
		case "":
			c.HandleUnknown = HandleUnknownIgnore
		case HandleUnknownIgnore, HandleUnknownError:
		default:
			return nil, fmt.Errorf("%w: column %q handle_unknown %q", ErrInvalidArtifact, c.Name, c.HandleUnknown)
		}
		seen[c.Name] = true
		width += len(c.Categories)
		cats[i] = c
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: no input columns", ErrInvalidArtifact)
	}
	return &Pipeline{
		kind:        kind,
		numeric:     append([]NumericColumn(nil), numeric...),
		categorical: cats,
		est:         est,
		width:       width,
	}, nil
}

// Kind returns the estimator type name.
func (p *Pipeline) Kind() string { return p.kind }

// Width returns the length of transformed feature vectors.
func (p *Pipeline) Width() int { return p.width }

// Columns returns input column names in pipeline order.
func (p *Pipeline) Columns() []string {
	out := make([]string, 0, len(p.numeric)+len(p.categorical))
	for _, c := range p.numeric {
		out = append(out, c.Name)
	}
	for _, c := range p.categorical {
		out = append(out, c.Name)
	}
	return out
}

// Transform selects the pipeline's columns from row by name and encodes them.
// Columns in row that the pipeline does not use are ignored.
func (p *Pipeline) Transform(row Row) ([]float64, error) {
	x := make([]float64, 0, p.width)
	for _, c := range p.numeric {
		v, ok := row.Lookup(c.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.Name)
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T, want number", ErrColumnType, c.Name, v)
		}
		if math.IsNaN(f) {
			f = c.Impute
		}
		scale := c.Scale
		if scale == 0 {
			scale = 1
		}
		x = append(x, (f-c.Mean)/scale)
	}
	for _, c := range p.categorical {
		v, ok := row.Lookup(c.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.Name)
		}
		s, ok := categoryKey(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T, want string or integer", ErrColumnType, c.Name, v)
		}
		hit := false
		for _, cat := range c.Categories {
			if cat == s {
				x = append(x, 1)
				hit = true
			} else {
				x = append(x, 0)
			}
		}
		if !hit && c.HandleUnknown == HandleUnknownError {
			return nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, c.Name, s)
		}
	}
	for i, f := range x {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: feature %d is %v", ErrNumeric, i, f)
		}
	}
	return x, nil
}

// Predict implements Predictor.
func (p *Pipeline) Predict(row Row) (int, error) {
	x, err := p.Transform(row)
	if err != nil {
		return 0, err
	}
	return p.est.Predict(x)
}

// categoryKey renders a categorical value the way the artifact lists its
// categories. Integer columns such as Pclass are matched by decimal text.
func categoryKey(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
