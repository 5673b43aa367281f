package storage

import (
	"errors"
	"fmt"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a general implementation
type Key struct {
	Hash    int64  `json:"hash"`
	Dataset string `json:"dataset"`
	Label   string `json:"label"`
}

// K is a simplified key for storage
type K struct {
	Dataset string `json:"dataset"`
	Label   string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%v_%s", k.Dataset, k.Hash, k.Label)
}

// Persistence stores and loads single values.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// Registry appends values and retrieves all of them.
type Registry interface {
	Add(key K, value interface{}) error
	GetAll(key K, values interface{}) error
}
