package ml

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTable(t *testing.T, seed int64, n, dim int) *Table {
	r := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, dim)
		for j := range rows[i] {
			rows[i][j] = r.NormFloat64() * 10
		}
	}
	return mustTable(t, nil, rows)
}

func TestWard_Pairs(t *testing.T) {
	table := mustTable(t, nil, [][]float64{{1, 1}, {1, 1}, {10, 10}, {10, 10}})

	linkage, err := Ward(table)
	require.NoError(t, err)

	assert.Equal(t, Linkage{
		{A: 0, B: 1, Distance: 0, Size: 2},
		{A: 2, B: 3, Distance: 0, Size: 2},
		{A: 4, B: 5, Distance: 18, Size: 4},
	}, linkage)
}

func TestWard_SingleMergeIsEuclidean(t *testing.T) {
	table := mustTable(t, nil, [][]float64{{0, 0}, {3, 4}})
	linkage, err := Ward(table)
	require.NoError(t, err)
	require.Len(t, linkage, 1)
	assert.InDelta(t, 5, linkage[0].Distance, 1e-12)
}

func TestWard_TieBreak(t *testing.T) {
	// both (0,1) and (1,2) are one unit apart, the lowest rows merge first
	table := mustTable(t, nil, [][]float64{{0}, {1}, {2}})
	linkage, err := Ward(table)
	require.NoError(t, err)
	require.Len(t, linkage, 2)
	assert.Equal(t, 0, linkage[0].A)
	assert.Equal(t, 1, linkage[0].B)
	assert.Equal(t, 2, linkage[1].A)
	assert.Equal(t, 3, linkage[1].B)
	assert.Equal(t, 3, linkage[1].Size)
}

func TestWard_SingleRow(t *testing.T) {
	table := mustTable(t, nil, [][]float64{{1, 2}})
	linkage, err := Ward(table)
	require.NoError(t, err)
	assert.Empty(t, linkage)

	a, err := Cut(linkage, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Assignment{0}, a)
}

func TestWard_Monotonic(t *testing.T) {
	table := randomTable(t, 42, 40, 3)
	linkage, err := Ward(table)
	require.NoError(t, err)
	require.Len(t, linkage, 39)
	for i := 1; i < len(linkage); i++ {
		assert.GreaterOrEqual(t, linkage[i].Distance+1e-9, linkage[i-1].Distance)
	}
	assert.Equal(t, 40, linkage[len(linkage)-1].Size)
}

func TestCut(t *testing.T) {
	table := randomTable(t, 7, 25, 3)
	n := table.Rows()
	linkage, err := Ward(table)
	require.NoError(t, err)

	for k := 1; k <= n; k++ {
		a, err := Cut(linkage, n, k)
		require.NoError(t, err)
		require.Len(t, a, n)
		seen := make(map[int]bool)
		for _, l := range a {
			assert.True(t, l >= 0 && l < k, "label %d out of range for k=%d", l, k)
			seen[l] = true
		}
		assert.Equal(t, k, len(seen))
		assert.Equal(t, 0, a[0])
	}
}

func TestCut_Invalid(t *testing.T) {
	linkage := Linkage{{A: 0, B: 1, Distance: 1, Size: 2}}

	type test struct {
		linkage Linkage
		n, k    int
		err     error
	}

	tests := map[string]test{
		"no-rows": {
			n:   0,
			k:   1,
			err: EmptyInputErr,
		},
		"k-zero": {
			linkage: linkage,
			n:       2,
			k:       0,
			err:     InvalidParameterErr,
		},
		"k-too-large": {
			linkage: linkage,
			n:       2,
			k:       3,
			err:     InvalidParameterErr,
		},
		"wrong-linkage": {
			linkage: linkage,
			n:       3,
			k:       1,
			err:     InvalidParameterErr,
		},
		"unknown-cluster": {
			linkage: Linkage{{A: 0, B: 2, Distance: 1, Size: 2}},
			n:       2,
			k:       1,
			err:     InvalidParameterErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := Cut(tt.linkage, tt.n, tt.k)
			assert.True(t, errors.Is(err, tt.err), "unexpected error: %v", err)
			assert.Nil(t, a)
		})
	}
}

func TestAssign(t *testing.T) {
	table := mustTable(t, []string{"x", "y"}, [][]float64{{1, 1}, {10, 10}, {1, 1}, {10, 10}})

	a, linkage, err := Assign(table, 2)
	require.NoError(t, err)
	assert.Equal(t, Assignment{0, 1, 0, 1}, a)
	assert.Len(t, linkage, 3)
	assert.Equal(t, 2, a.K())

	wcss, err := SSE(table, a)
	require.NoError(t, err)
	assert.InDelta(t, 0, wcss, 1e-12)
}

func TestAssign_Invalid(t *testing.T) {
	table := mustTable(t, nil, [][]float64{{1}, {2}})
	for _, k := range []int{-1, 0, 3} {
		a, linkage, err := Assign(table, k)
		assert.True(t, errors.Is(err, InvalidParameterErr), "k=%d: %v", k, err)
		assert.Nil(t, a)
		assert.Nil(t, linkage)
	}
}
