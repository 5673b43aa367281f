package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/storage"
	"github.com/rs/zerolog/log"
)

var (
	MissingValueErr  = errors.New("missing value")
	NotNumericErr    = errors.New("not numeric")
	UnknownColumnErr = errors.New("unknown column")
)

// Frame is a csv table with a header row.
type Frame struct {
	Header  []string
	Records [][]string
}

// Load reads the csv file at the given path.
func Load(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dataset not found at '%s': %w", path, storage.NotFoundErr)
		}
		return nil, fmt.Errorf("could not open '%s': %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read csv '%s': %w: %v", path, storage.CouldNotLoadErr, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header in '%s': %w", path, storage.CouldNotLoadErr)
	}
	frame := &Frame{
		Header:  rows[0],
		Records: rows[1:],
	}
	log.Info().
		Str("path", path).
		Int("rows", frame.Len()).
		Int("columns", len(frame.Header)).
		Msg("loaded dataset")
	return frame, nil
}

// Save writes the frame as csv to the given path.
// The parent directory must already exist.
func (f *Frame) Save(path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", path, err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("could not close file '%s': %w", path, cErr)
		}
	}()

	w := csv.NewWriter(out)
	if err := w.Write(f.Header); err != nil {
		return fmt.Errorf("could not write header to '%s': %w", path, err)
	}
	if err := w.WriteAll(f.Records); err != nil {
		return fmt.Errorf("could not write records to '%s': %w", path, err)
	}
	log.Info().Str("path", path).Int("rows", f.Len()).Msg("saved dataset")
	return nil
}

// Len returns the number of records.
func (f *Frame) Len() int {
	return len(f.Records)
}

// Column returns the index of the given column.
func (f *Frame) Column(name string) (int, error) {
	for i, h := range f.Header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("'%s' not in %v: %w", name, f.Header, UnknownColumnErr)
}

// Strings returns the raw values of the given column.
func (f *Frame) Strings(name string) ([]string, error) {
	j, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	ss := make([]string, len(f.Records))
	for i, r := range f.Records {
		ss[i] = cell(r, j)
	}
	return ss, nil
}

// Floats parses the values of the given column.
func (f *Frame) Floats(name string) ([]float64, error) {
	j, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	ff := make([]float64, len(f.Records))
	for i, r := range f.Records {
		s := strings.TrimSpace(cell(r, j))
		if s == "" {
			return nil, fmt.Errorf("row %d column '%s': %w", i, name, MissingValueErr)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column '%s' value '%s': %w", i, name, s, NotNumericErr)
		}
		ff[i] = v
	}
	return ff, nil
}

// Table builds a feature table out of the given columns.
func (f *Frame) Table(features ...string) (*ml.Table, error) {
	columns := make([][]float64, len(features))
	for j, name := range features {
		c, err := f.Floats(name)
		if err != nil {
			return nil, err
		}
		columns[j] = c
	}
	rows := make([][]float64, f.Len())
	for i := range rows {
		rows[i] = make([]float64, len(features))
		for j := range features {
			rows[i][j] = columns[j][i]
		}
	}
	return ml.NewTable(features, rows)
}

// With returns a new frame with the given column appended, or replaced if it already exists.
func (f *Frame) With(name string, values []string) (*Frame, error) {
	if len(values) != f.Len() {
		return nil, fmt.Errorf("column '%s' has %d values for %d records", name, len(values), f.Len())
	}
	j, err := f.Column(name)
	header := append([]string{}, f.Header...)
	if err != nil {
		j = len(header)
		header = append(header, name)
	}
	records := make([][]string, f.Len())
	for i, r := range f.Records {
		record := make([]string, len(header))
		copy(record, r)
		record[j] = values[i]
		records[i] = record
	}
	return &Frame{
		Header:  header,
		Records: records,
	}, nil
}

// Missing counts the empty cells of every column.
func (f *Frame) Missing() map[string]int {
	missing := make(map[string]int, len(f.Header))
	for j, h := range f.Header {
		missing[h] = 0
		for _, r := range f.Records {
			if strings.TrimSpace(cell(r, j)) == "" {
				missing[h]++
			}
		}
	}
	return missing
}

func (f *Frame) copy() *Frame {
	records := make([][]string, f.Len())
	for i, r := range f.Records {
		records[i] = append([]string{}, r...)
	}
	return &Frame{
		Header:  append([]string{}, f.Header...),
		Records: records,
	}
}

func cell(record []string, j int) string {
	if j < len(record) {
		return record[j]
	}
	return ""
}
