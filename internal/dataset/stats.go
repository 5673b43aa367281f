package dataset

import (
	"sort"
	"strconv"

	"github.com/drakos74/mall-segment/internal/buffer"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Description holds the summary statistics of a numeric column.
type Description struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Count is the number of occurrences of a value in a categorical column.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Standardize returns a new frame where each of the given columns
// is centered on its mean and scaled by its population standard deviation.
// Columns with no deviation are only centered.
func (f *Frame) Standardize(features ...string) (*Frame, error) {
	scaled := f.copy()
	for _, name := range features {
		j, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		values, err := f.Floats(name)
		if err != nil {
			return nil, err
		}
		stats := buffer.NewStats()
		for _, v := range values {
			stats.Push(v)
		}
		mean := stats.Avg()
		std := stats.StDev()
		if std == 0 {
			std = 1
		}
		for i, v := range values {
			scaled.Records[i][j] = strconv.FormatFloat((v-mean)/std, 'f', -1, 64)
		}
		log.Debug().
			Str("feature", name).
			Float64("mean", mean).
			Float64("std", stats.StDev()).
			Msg("standardized feature")
	}
	return scaled, nil
}

// Describe computes the summary statistics of the given numeric columns.
func (f *Frame) Describe(features ...string) ([]Description, error) {
	descriptions := make([]Description, len(features))
	for i, name := range features {
		values, err := f.Floats(name)
		if err != nil {
			return nil, err
		}
		stats := buffer.NewStats()
		for _, v := range values {
			stats.Push(v)
		}
		d := Description{
			Name:  name,
			Count: stats.Count(),
			Mean:  stats.Avg(),
			Std:   stats.SampleStDev(),
		}
		if len(values) > 0 {
			sorted := append([]float64{}, values...)
			sort.Float64s(sorted)
			d.Min = stats.Min()
			d.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
			d.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			d.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
			d.Max = stats.Max()
		}
		descriptions[i] = d
	}
	return descriptions, nil
}

// Counts returns the occurrences of each value of the given column,
// most frequent first.
func (f *Frame) Counts(name string) ([]Count, error) {
	values, err := f.Strings(name)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	cc := make([]Count, 0, len(counts))
	for v, c := range counts {
		cc = append(cc, Count{Value: v, Count: c})
	}
	sort.Slice(cc, func(i, j int) bool {
		if cc[i].Count != cc[j].Count {
			return cc[i].Count > cc[j].Count
		}
		return cc[i].Value < cc[j].Value
	})
	return cc, nil
}
