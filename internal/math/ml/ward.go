package ml

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Assignment maps each row of a table to its cluster label.
// Labels are in [0,k) but carry no ordering, label 0 is not the largest or the best cluster.
type Assignment []int

// Merge is a single step of the agglomeration.
// Original rows are identified by their index, the cluster created at step i by n+i.
type Merge struct {
	A        int     `json:"a"`
	B        int     `json:"b"`
	Distance float64 `json:"distance"`
	Size     int     `json:"size"`
}

// Linkage is the full merge history of an agglomeration.
type Linkage []Merge

// Ward builds the full merge tree of the table with Ward's minimum variance criterion.
// The cost of merging two clusters is kept as the squared ward distance,
// updated through the Lance-Williams formula. The reported distance is its square root.
//
// Ties are resolved in favour of the pair with the lowest original row indices,
// compared first on the first cluster and then on the second.
func Ward(t *Table) (Linkage, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	n := t.Rows()

	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := floats.Distance(t.raw(i), t.raw(j), 2)
			d.SetSym(i, j, dist*dist)
		}
	}

	// slot i always holds the cluster whose lowest row index is i
	size := make([]int, n)
	id := make([]int, n)
	active := make([]bool, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		id[i] = i
		active[i] = true
	}

	linkage := make(Linkage, 0, n-1)
	for step := 0; step < n-1; step++ {
		a, b := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if v := d.At(i, j); v < best {
					best = v
					a, b = i, j
				}
			}
		}

		first, second := id[a], id[b]
		if first > second {
			first, second = second, first
		}
		linkage = append(linkage, Merge{
			A:        first,
			B:        second,
			Distance: math.Sqrt(best),
			Size:     size[a] + size[b],
		})

		na, nb := float64(size[a]), float64(size[b])
		for s := 0; s < n; s++ {
			if !active[s] || s == a || s == b {
				continue
			}
			ns := float64(size[s])
			v := ((na+ns)*d.At(a, s) + (nb+ns)*d.At(b, s) - ns*best) / (na + nb + ns)
			d.SetSym(a, s, math.Max(v, 0))
		}
		size[a] += size[b]
		id[a] = n + step
		active[b] = false
	}

	log.Debug().
		Int("rows", n).
		Int("merges", len(linkage)).
		Msg("built ward linkage")
	return linkage, nil
}

// Cut replays the first n-k merges of the linkage and labels every row with its cluster.
// Labels are numbered in the order the clusters first appear when scanning the rows.
func Cut(linkage Linkage, n, k int) (Assignment, error) {
	if n < 1 {
		return nil, fmt.Errorf("no rows to cut: %w", EmptyInputErr)
	}
	if len(linkage) != n-1 {
		return nil, fmt.Errorf("linkage of %d merges does not match %d rows: %w", len(linkage), n, InvalidParameterErr)
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("k=%d must be in [1,%d]: %w", k, n, InvalidParameterErr)
	}

	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	for step := 0; step < n-k; step++ {
		m := linkage[step]
		if m.A < 0 || m.B < 0 || m.A >= n+step || m.B >= n+step {
			return nil, fmt.Errorf("merge %d references unknown cluster [%d,%d]: %w", step, m.A, m.B, InvalidParameterErr)
		}
		parent[m.A] = n + step
		parent[m.B] = n + step
	}

	root := func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}

	labels := make(map[int]int, k)
	assignment := make(Assignment, n)
	for i := 0; i < n; i++ {
		r := root(i)
		l, ok := labels[r]
		if !ok {
			l = len(labels)
			labels[r] = l
		}
		assignment[i] = l
	}
	return assignment, nil
}

// Assign clusters the table into k groups with ward agglomeration.
// It returns the label of each row and the full linkage for rendering a dendrogram.
func Assign(t *Table, k int) (Assignment, Linkage, error) {
	if err := t.check(); err != nil {
		return nil, nil, err
	}
	n := t.Rows()
	if k < 1 || k > n {
		return nil, nil, fmt.Errorf("k=%d must be in [1,%d]: %w", k, n, InvalidParameterErr)
	}
	linkage, err := Ward(t)
	if err != nil {
		return nil, nil, fmt.Errorf("could not build linkage: %w", err)
	}
	assignment, err := Cut(linkage, n, k)
	if err != nil {
		return nil, nil, fmt.Errorf("could not cut linkage: %w", err)
	}
	return assignment, linkage, nil
}

// K returns one more than the highest label of the assignment.
func (a Assignment) K() int {
	k := 0
	for _, l := range a {
		if l+1 > k {
			k = l + 1
		}
	}
	return k
}
