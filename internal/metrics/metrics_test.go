package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Track(t *testing.T) {
	runs := Observer.prometheus.Runs

	before := testutil.ToFloat64(runs.WithLabelValues("test", Success))
	Observer.Track("test", time.Now(), nil)
	assert.Equal(t, before+1, testutil.ToFloat64(runs.WithLabelValues("test", Success)))

	failures := testutil.ToFloat64(runs.WithLabelValues("test", Failure))
	Observer.Track("test", time.Now(), errors.New("boom"))
	assert.Equal(t, failures+1, testutil.ToFloat64(runs.WithLabelValues("test", Failure)))
}

func TestMetrics_Gauges(t *testing.T) {
	Observer.WCSS([]float64{40, 12.5, 3})
	assert.Equal(t, 12.5, testutil.ToFloat64(Observer.prometheus.WCSS.WithLabelValues("2")))
	assert.Equal(t, 3, testutil.CollectAndCount(Observer.prometheus.WCSS))

	Observer.ClusterSizes([]int{120, 40, 25, 15})
	assert.Equal(t, 40.0, testutil.ToFloat64(Observer.prometheus.Clusters.WithLabelValues("1")))
	assert.Equal(t, 4, testutil.CollectAndCount(Observer.prometheus.Clusters))
}

func TestMetrics_GaugesReplacePreviousRun(t *testing.T) {
	type test struct {
		first  []int
		second []int
		count  int
	}

	tests := map[string]test{
		"fewer-clusters": {
			first:  []int{50, 50, 50, 50},
			second: []int{120, 80},
			count:  2,
		},
		"more-clusters": {
			first:  []int{200},
			second: []int{100, 60, 40},
			count:  3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			Observer.ClusterSizes(tt.first)
			Observer.ClusterSizes(tt.second)
			assert.Equal(t, tt.count, testutil.CollectAndCount(Observer.prometheus.Clusters))

			wcss := make([]float64, len(tt.first))
			Observer.WCSS(wcss)
			Observer.WCSS(wcss[:1])
			assert.Equal(t, 1, testutil.CollectAndCount(Observer.prometheus.WCSS))
		})
	}
}
