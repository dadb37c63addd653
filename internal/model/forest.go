package model

import (
	"errors"
	"fmt"
)

// RandomForest predicts the majority label of its trees. Ties go to the
// smallest label.
type RandomForest struct {
	Trees []DecisionTree `json:"trees"`
}

func (rf *RandomForest) validate(width int) error {
	if len(rf.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i := range rf.Trees {
		if err := rf.Trees[i].validate(width); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (rf *RandomForest) Predict(x []float64) (int, error) {
	if len(rf.Trees) == 0 {
		return 0, errors.New("forest has no trees")
	}
	votes := make(map[int]int)
	for i := range rf.Trees {
		label, err := rf.Trees[i].Predict(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		votes[label]++
	}
	best, bestVotes := 0, -1
	for label, n := range votes {
		if n > bestVotes || (n == bestVotes && label < best) {
			best, bestVotes = label, n
		}
	}
	return best, nil
}
