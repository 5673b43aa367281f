package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Table is an immutable set of feature vectors, one row per entity.
type Table struct {
	features []string
	data     *mat.Dense
}

// NewTable creates a new table for the given feature names and rows.
// If no feature names are given, the columns are named x0, x1, ...
// All rows must have the same length and contain only finite values.
func NewTable(features []string, rows [][]float64) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows given: %w", EmptyInputErr)
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("no features given: %w", InvalidParameterErr)
	}
	if features == nil {
		features = make([]string, dim)
		for j := range features {
			features[j] = fmt.Sprintf("x%d", j)
		}
	}
	if len(features) != dim {
		return nil, fmt.Errorf("inconsistent dimensions %d vs %d features: %w", dim, len(features), InvalidParameterErr)
	}
	data := make([]float64, 0, len(rows)*dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d values instead of %d: %w", i, len(row), dim, InvalidParameterErr)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d feature '%s' is %v: %w", i, features[j], v, NonFiniteErr)
			}
		}
		data = append(data, row...)
	}
	ff := make([]string, dim)
	copy(ff, features)
	return &Table{
		features: ff,
		data:     mat.NewDense(len(rows), dim, data),
	}, nil
}

func (t *Table) check() error {
	if t == nil || t.data == nil {
		return fmt.Errorf("no table: %w", EmptyInputErr)
	}
	return nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if t == nil || t.data == nil {
		return 0
	}
	r, _ := t.data.Dims()
	return r
}

// Dims returns the number of rows and features.
func (t *Table) Dims() (int, int) {
	if t == nil || t.data == nil {
		return 0, 0
	}
	return t.data.Dims()
}

// Features returns the feature names.
func (t *Table) Features() []string {
	ff := make([]string, len(t.features))
	copy(ff, t.features)
	return ff
}

// Row returns a copy of the i-th feature vector.
func (t *Table) Row(i int) []float64 {
	return mat.Row(nil, i, t.data)
}

// Column returns a copy of the values of the given feature.
func (t *Table) Column(name string) ([]float64, error) {
	j, err := t.index(name)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, j, t.data), nil
}

func (t *Table) index(name string) (int, error) {
	for j, f := range t.features {
		if f == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("unknown feature '%s': %w", name, InvalidParameterErr)
}

// raw gives access to the i-th row without copying. Callers must not modify it.
func (t *Table) raw(i int) []float64 {
	return t.data.RawRowView(i)
}

func (t *Table) rows() [][]float64 {
	n := t.Rows()
	rr := make([][]float64, n)
	for i := 0; i < n; i++ {
		rr[i] = t.Row(i)
	}
	return rr
}
