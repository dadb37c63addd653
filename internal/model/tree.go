package model

import (
	"errors"
	"fmt"
)

// TreeNode is one node of a flattened decision tree. Children are absolute
// indices into the node slice and always follow their parent.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree sends x left when x[FeatureIdx] <= Threshold.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (dt *DecisionTree) validate(width int) error {
	if len(dt.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range dt.Nodes {
		if n.IsLeaf {
			continue
		}
		if n.FeatureIdx < 0 || n.FeatureIdx >= width {
			return fmt.Errorf("node %d: feature index %d out of range [0,%d)", i, n.FeatureIdx, width)
		}
		for _, c := range []int{n.LeftChild, n.RightChild} {
			if c <= i || c >= len(dt.Nodes) {
				return fmt.Errorf("node %d: child index %d invalid", i, c)
			}
		}
	}
	return nil
}

// Predict walks the tree from the root.
func (dt *DecisionTree) Predict(x []float64) (int, error) {
	if len(dt.Nodes) == 0 {
		return 0, errors.New("tree has no nodes")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(x) {
			return 0, errors.New("feature index out of range")
		}
		next := node.RightChild
		if x[node.FeatureIdx] <= node.Threshold {
			next = node.LeftChild
		}
		if next <= idx || next >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
		idx = next
	}
}
