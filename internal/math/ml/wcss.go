package ml

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Method is the partitioning method used for the elbow evaluation.
type Method string

const (
	WardMethod   Method = "ward"
	KMeansMethod Method = "kmeans"
)

const defaultIterations = 30

// Point is the wcss for a given number of clusters.
type Point struct {
	K    int     `json:"k"`
	WCSS float64 `json:"wcss"`
}

// Series holds the wcss points ordered by increasing k.
type Series []Point

// Values returns the wcss values of the series.
func (s Series) Values() []float64 {
	vv := make([]float64, len(s))
	for i, p := range s {
		vv[i] = p.WCSS
	}
	return vv
}

// Elbow evaluates the within-cluster sum of squares for a range of cluster counts.
type Elbow struct {
	method     Method
	iterations int
	parallel   bool
}

// NewElbow creates a new elbow evaluator for the given method.
func NewElbow(method Method) *Elbow {
	return &Elbow{
		method:     method,
		iterations: defaultIterations,
	}
}

// Parallel evaluates each k concurrently.
func (e *Elbow) Parallel() *Elbow {
	e.parallel = true
	return e
}

// Iterations sets the max iterations for the k-means method.
func (e *Elbow) Iterations(iterations int) *Elbow {
	e.iterations = iterations
	return e
}

// WCSS evaluates k=1..kmax with ward agglomeration.
func WCSS(t *Table, kmax int) (Series, error) {
	return NewElbow(WardMethod).Evaluate(t, kmax)
}

// Evaluate returns the wcss for every k in [1,kmax].
// With the ward method the series is non-increasing in k.
func (e *Elbow) Evaluate(t *Table, kmax int) (Series, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	n := t.Rows()
	if kmax < 1 || kmax > n {
		return nil, fmt.Errorf("max clusters %d must be in [1,%d]: %w", kmax, n, InvalidParameterErr)
	}

	var partition func(k int) (Assignment, error)
	switch e.method {
	case WardMethod:
		linkage, err := Ward(t)
		if err != nil {
			return nil, fmt.Errorf("could not build linkage: %w", err)
		}
		partition = func(k int) (Assignment, error) {
			return Cut(linkage, n, k)
		}
	case KMeansMethod:
		if e.iterations < 1 {
			return nil, fmt.Errorf("iterations %d must be positive: %w", e.iterations, InvalidParameterErr)
		}
		partition = func(k int) (Assignment, error) {
			return KMeans(t, k, e.iterations)
		}
	default:
		return nil, fmt.Errorf("unknown method '%s': %w", e.method, InvalidParameterErr)
	}

	series := make(Series, kmax)
	var group errgroup.Group
	for k := 1; k <= kmax; k++ {
		k := k
		eval := func() error {
			assignment, err := partition(k)
			if err != nil {
				return fmt.Errorf("could not partition for k=%d: %w", k, err)
			}
			wcss, err := SSE(t, assignment)
			if err != nil {
				return fmt.Errorf("could not compute wcss for k=%d: %w", k, err)
			}
			series[k-1] = Point{K: k, WCSS: wcss}
			return nil
		}
		if e.parallel {
			group.Go(eval)
		} else if err := eval(); err != nil {
			return nil, err
		}
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("method", string(e.method)).
		Int("rows", n).
		Int("kmax", kmax).
		Bool("parallel", e.parallel).
		Msg("evaluated wcss")
	return series, nil
}

// Centroids returns the mean vector of each label.
// Labels without rows get a nil centroid.
func Centroids(t *Table, a Assignment) ([][]float64, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	n, dim := t.Dims()
	if len(a) != n {
		return nil, fmt.Errorf("assignment of %d rows does not match table of %d: %w", len(a), n, InvalidParameterErr)
	}
	k := a.K()
	sums := make([][]float64, k)
	counts := make([]int, k)
	for i, l := range a {
		if l < 0 {
			return nil, fmt.Errorf("negative label %d at row %d: %w", l, i, InvalidParameterErr)
		}
		if sums[l] == nil {
			sums[l] = make([]float64, dim)
		}
		for j, v := range t.raw(i) {
			sums[l][j] += v
		}
		counts[l]++
	}
	for l, c := range counts {
		if c == 0 {
			continue
		}
		for j := range sums[l] {
			sums[l][j] /= float64(c)
		}
	}
	return sums, nil
}

// SSE returns the sum of squared euclidean distances of each row to its cluster centroid.
func SSE(t *Table, a Assignment) (float64, error) {
	centroids, err := Centroids(t, a)
	if err != nil {
		return 0, err
	}
	var sse float64
	for i, l := range a {
		c := centroids[l]
		for j, v := range t.raw(i) {
			d := v - c[j]
			sse += d * d
		}
	}
	return sse, nil
}
