package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/drakos74/mall-segment/internal/storage"
)

const (
	filename = "%d.events.log"
)

// Registry appends json events to log files, one file per hash.
type Registry struct {
	hash int64
	root string
}

// NewEventRegistry creates a registry under the given root directory.
func NewEventRegistry(root string) *Registry {
	return &Registry{
		hash: time.Now().Unix(),
		root: root,
	}
}

func (e *Registry) WithHash(h int64) *Registry {
	e.hash = h
	return e
}

func (e *Registry) filePath(k storage.K) string {
	return filepath.Join(e.root, k.Dataset, k.Label)
}

func (e *Registry) Add(key storage.K, value interface{}) error {
	filePath := e.filePath(key)

	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(filepath.Join(filePath, fmt.Sprintf(filename, e.hash)), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write log file for '%+v': %w", key, err)
	}
	return nil
}

// GetAll appends the events of every log file for the key to the given slice pointer.
// Files are read in ascending hash order.
func (e *Registry) GetAll(key storage.K, values interface{}) error {
	vv := reflect.ValueOf(values)
	if vv.Kind() != reflect.Ptr || vv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting slice pointers as placeholder for the results: %T", values)
	}
	slice := vv.Elem()
	t := slice.Type().Elem()

	files, err := filepath.Glob(filepath.Join(e.filePath(key), "*.events.log"))
	if err != nil {
		return fmt.Errorf("could not list events for '%+v': %w", key, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no events for '%+v': %w", key, storage.NotFoundErr)
	}
	sort.Strings(files)

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("could not read file '%s': %w", file, err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			s := strings.TrimSpace(scanner.Text())
			if s == "" {
				continue
			}
			instance := reflect.New(t)
			if err := json.Unmarshal([]byte(s), instance.Interface()); err != nil {
				f.Close()
				return fmt.Errorf("could not decode event value '%s': %v: %w", s, err, storage.CouldNotLoadErr)
			}
			slice = reflect.Append(slice, instance.Elem())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("could not scan file '%s': %w", file, err)
		}
	}

	vv.Elem().Set(slice)
	return nil
}
