package model

import (
	"errors"
	"fmt"
	"math"
)

// LogisticRegression mirrors a fitted linear classifier. With two classes Coef
// holds one row and the positive class is Classes[1]; with more, one row per
// class and the argmax wins. Threshold applies to the binary case; nil means
// 0.5.
type LogisticRegression struct {
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
	Threshold *float64    `json:"threshold,omitempty"`
}

func (lr *LogisticRegression) validate(width int) error {
	switch {
	case len(lr.Classes) < 2:
		return errors.New("need at least two classes")
	case len(lr.Classes) == 2 && len(lr.Coef) != 1:
		return fmt.Errorf("binary model needs 1 coefficient row, got %d", len(lr.Coef))
	case len(lr.Classes) > 2 && len(lr.Coef) != len(lr.Classes):
		return fmt.Errorf("%d classes but %d coefficient rows", len(lr.Classes), len(lr.Coef))
	case len(lr.Intercept) != len(lr.Coef):
		return fmt.Errorf("%d intercepts for %d coefficient rows", len(lr.Intercept), len(lr.Coef))
	case lr.Threshold != nil && (*lr.Threshold < 0 || *lr.Threshold >= 1):
		return fmt.Errorf("threshold %v outside [0,1)", *lr.Threshold)
	}
	for i, row := range lr.Coef {
		if len(row) != width {
			return fmt.Errorf("coefficient row %d has %d weights, want %d", i, len(row), width)
		}
	}
	return nil
}

func (lr *LogisticRegression) decision(row []float64, b float64, x []float64) (float64, error) {
	if len(row) != len(x) {
		return 0, fmt.Errorf("input has %d features, want %d", len(x), len(row))
	}
	z := b
	for i, w := range row {
		z += w * x[i]
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("%w: decision value %v", ErrNumeric, z)
	}
	return z, nil
}

func (lr *LogisticRegression) Predict(x []float64) (int, error) {
	if len(lr.Coef) == 0 || len(lr.Classes) < 2 {
		return 0, errors.New("model has no coefficients")
	}
	if len(lr.Classes) == 2 {
		z, err := lr.decision(lr.Coef[0], lr.Intercept[0], x)
		if err != nil {
			return 0, err
		}
		threshold := 0.5
		if lr.Threshold != nil {
			threshold = *lr.Threshold
		}
		if sigmoid(z) > threshold {
			return lr.Classes[1], nil
		}
		return lr.Classes[0], nil
	}
	best, bestZ := 0, math.Inf(-1)
	for i, row := range lr.Coef {
		z, err := lr.decision(row, lr.Intercept[i], x)
		if err != nil {
			return 0, err
		}
		if z > bestZ {
			best, bestZ = i, z
		}
	}
	return lr.Classes[best], nil
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }
