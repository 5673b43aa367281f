package ml

import (
	"fmt"
	"io/ioutil"

	"github.com/cdipaolo/goml/cluster"
	"github.com/rs/zerolog/log"
)

// KMeans partitions the table into k groups with lloyd iterations.
// The initial centroids are random, so repeated runs may label rows differently.
func KMeans(t *Table, k int, iterations int) (Assignment, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	n := t.Rows()
	if k < 1 || k > n {
		return nil, fmt.Errorf("k=%d must be in [1,%d]: %w", k, n, InvalidParameterErr)
	}
	model := cluster.NewKMeans(k, iterations, t.rows())
	model.Output = ioutil.Discard
	if err := model.Learn(); err != nil {
		log.Error().
			Err(err).
			Int("k", k).
			Int("rows", n).
			Msg("error during training on k-means")
		return nil, fmt.Errorf("could not train: %w", err)
	}
	guesses := model.Guesses()
	if len(guesses) != n {
		return nil, fmt.Errorf("could not align guesses with data [ %d | %d ]", len(guesses), n)
	}
	assignment := make(Assignment, n)
	copy(assignment, guesses)
	return assignment, nil
}
