package model

// Row is a single-row table: named columns in a fixed order. Values are int,
// int64, float32, float64 or string.
type Row struct {
	names  []string
	values []any
}

// NewRow returns an empty row with room for n columns.
func NewRow(n int) Row {
	return Row{names: make([]string, 0, n), values: make([]any, 0, n)}
}

// Append adds a column to the end of the row.
func (r *Row) Append(name string, v any) {
	r.names = append(r.names, name)
	r.values = append(r.values, v)
}

// Columns returns the column names in row order.
func (r Row) Columns() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup returns the value of the named column.
func (r Row) Lookup(name string) (any, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Predictor produces one class label from one row.
type Predictor interface {
	Predict(row Row) (int, error)
}
