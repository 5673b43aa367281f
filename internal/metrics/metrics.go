package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Success = "success"
	Failure = "failure"
)

var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Runs,
		Observer.prometheus.Duration,
		Observer.prometheus.WCSS,
		Observer.prometheus.Clusters,
	)
}

type Metrics struct {
	prometheus Prometheus
}

// Track records the outcome and the duration of a stage execution.
func (m *Metrics) Track(stage string, start time.Time, err error) {
	status := Success
	if err != nil {
		status = Failure
	}
	m.prometheus.Runs.WithLabelValues(stage, status).Inc()
	m.prometheus.Duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WCSS exposes the wcss of an elbow evaluation, where the i-th value is for k=i+1.
// Values of a previous evaluation are dropped.
func (m *Metrics) WCSS(wcss []float64) {
	m.prometheus.WCSS.Reset()
	for i, v := range wcss {
		m.prometheus.WCSS.WithLabelValues(strconv.Itoa(i + 1)).Set(v)
	}
}

// ClusterSizes exposes the number of rows assigned to each cluster.
// Clusters of a previous assignment are dropped.
func (m *Metrics) ClusterSizes(sizes []int) {
	m.prometheus.Clusters.Reset()
	for l, size := range sizes {
		m.prometheus.Clusters.WithLabelValues(strconv.Itoa(l)).Set(float64(size))
	}
}
