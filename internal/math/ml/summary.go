package ml

import (
	"fmt"
	"sort"

	"github.com/drakos74/mall-segment/internal/buffer"
)

// Summary holds the aggregate properties of a cluster.
type Summary struct {
	Label int       `json:"label"`
	Size  int       `json:"size"`
	Avg   []float64 `json:"avg"`
}

// Summarize computes the size and the mean of the given features for each label present in the assignment.
// Summaries are ordered by ascending label, labels without rows are left out.
// If no features are given, all table features are used.
func Summarize(t *Table, a Assignment, features ...string) ([]Summary, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	n := t.Rows()
	if len(a) != n {
		return nil, fmt.Errorf("assignment of %d rows does not match table of %d: %w", len(a), n, InvalidParameterErr)
	}
	if len(features) == 0 {
		features = t.features
	}
	index := make([]int, len(features))
	for i, f := range features {
		j, err := t.index(f)
		if err != nil {
			return nil, err
		}
		index[i] = j
	}

	stats := make(map[int]*buffer.StatsCollector)
	v := make([]float64, len(index))
	for i, l := range a {
		if l < 0 {
			return nil, fmt.Errorf("negative label %d at row %d: %w", l, i, InvalidParameterErr)
		}
		if _, ok := stats[l]; !ok {
			stats[l] = buffer.NewStatsCollector(len(index))
		}
		row := t.raw(i)
		for f, j := range index {
			v[f] = row[j]
		}
		stats[l].Push(v...)
	}

	labels := make([]int, 0, len(stats))
	for l := range stats {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	summaries := make([]Summary, 0, len(labels))
	for _, l := range labels {
		sc := stats[l]
		if sc.Size() == 0 {
			continue
		}
		summaries = append(summaries, Summary{
			Label: l,
			Size:  sc.Size(),
			Avg:   sc.Means(),
		})
	}
	return summaries, nil
}
