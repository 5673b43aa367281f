package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customers = `CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)
1,Male,19,15,39
2,Male,21,15,81
3,Female,20,16,6
4,Female,23,16,77
5,Female,31,17,40
`

var features = []string{"Age", "Annual Income (k$)", "Spending Score (1-100)"}

func writeFile(t *testing.T, content string) string {
	p := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad(t *testing.T) {
	frame, err := Load(writeFile(t, customers))
	require.NoError(t, err)
	assert.Equal(t, 5, frame.Len())
	assert.Equal(t, "CustomerID", frame.Header[0])

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, storage.NotFoundErr))

	_, err = Load(writeFile(t, ""))
	assert.True(t, errors.Is(err, storage.CouldNotLoadErr))
}

func TestFrame_Table(t *testing.T) {

	type test struct {
		content string
		err     error
	}

	tests := map[string]test{
		"valid": {
			content: customers,
		},
		"missing": {
			content: "CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)\n1,Male,,15,39\n",
			err:     MissingValueErr,
		},
		"not-numeric": {
			content: "CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)\n1,Male,young,15,39\n",
			err:     NotNumericErr,
		},
		"unknown-column": {
			content: "CustomerID,Gender,Age\n1,Male,19\n",
			err:     UnknownColumnErr,
		},
		"no-rows": {
			content: "CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)\n",
			err:     ml.EmptyInputErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			frame, err := Load(writeFile(t, tt.content))
			require.NoError(t, err)
			table, err := frame.Table(features...)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			n, dim := table.Dims()
			assert.Equal(t, 5, n)
			assert.Equal(t, 3, dim)
			assert.Equal(t, []float64{19, 15, 39}, table.Row(0))
		})
	}
}

func TestFrame_With(t *testing.T) {
	frame, err := Load(writeFile(t, customers))
	require.NoError(t, err)

	clustered, err := frame.With("Cluster", []string{"0", "0", "1", "1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "Cluster", clustered.Header[len(clustered.Header)-1])
	assert.Equal(t, "2", clustered.Records[4][5])
	// the original frame is untouched
	assert.Len(t, frame.Header, 5)

	replaced, err := clustered.With("Cluster", []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, replaced.Header, 6)
	assert.Equal(t, "e", replaced.Records[4][5])

	_, err = frame.With("Cluster", []string{"0"})
	assert.Error(t, err)
}

func TestFrame_SaveLoad(t *testing.T) {
	frame, err := Load(writeFile(t, customers))
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "copy.csv")
	require.NoError(t, frame.Save(p))

	loaded, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, frame, loaded)

	err = frame.Save(filepath.Join(t.TempDir(), "missing-dir", "copy.csv"))
	assert.Error(t, err)
}

func TestFrame_Missing(t *testing.T) {
	frame, err := Load(writeFile(t, "a,b\n1,\n,\n3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, frame.Missing())
}

func TestFrame_SaveWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}
	frame, err := Load(writeFile(t, customers))
	require.NoError(t, err)

	// every write to /dev/full fails with no space left
	assert.Error(t, frame.Save("/dev/full"))
}
