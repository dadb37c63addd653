package schema

import (
	"fmt"
	"sort"
)

// LabelTable maps raw class labels to human-readable statuses.
type LabelTable map[int]string

// DefaultLabels is the binary survival mapping.
func DefaultLabels() LabelTable {
	return LabelTable{0: "Not Survived", 1: "Survived"}
}

// Status returns the status for label.
func (t LabelTable) Status(label int) (string, bool) {
	s, ok := t[label]
	return s, ok
}

// Clone returns an independent copy.
func (t LabelTable) Clone() LabelTable {
	out := make(LabelTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Validate requires at least two labels with non-empty statuses.
func (t LabelTable) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("label table needs at least 2 entries, got %d", len(t))
	}
	keys := make([]int, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if t[k] == "" {
			return fmt.Errorf("label %d has empty status", k)
		}
	}
	return nil
}
