package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/mall-segment/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Dataset string `json:"dataset"`
	Elbow   struct {
		MaxClusters int `json:"max_clusters"`
	} `json:"elbow"`
}

func TestLoad(t *testing.T) {
	var s sample
	require.NoError(t, Load("segment.json", &s))
	assert.Equal(t, "mall-customers", s.Dataset)
	assert.Equal(t, 10, s.Elbow.MaxClusters)

	err := Load(filepath.Join(t.TempDir(), "missing.json"), &s)
	assert.True(t, errors.Is(err, storage.NotFoundErr))

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	err = Load(broken, &s)
	assert.True(t, errors.Is(err, storage.CouldNotLoadErr))
}
