package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	WCSS     *prometheus.GaugeVec
	Clusters *prometheus.GaugeVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "segment",
				Name:      "stage_runs_total",
				Help:      "pipeline stage executions by outcome",
			}, []string{"stage", "status"}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "segment",
				Name:      "stage_duration_seconds",
				Help:      "pipeline stage execution time",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			}, []string{"stage"}),
		WCSS: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "segment",
				Name:      "wcss",
				Help:      "within-cluster sum of squares of the last elbow evaluation",
			}, []string{"k"}),
		Clusters: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "segment",
				Name:      "cluster_size",
				Help:      "rows per cluster of the last assignment",
			}, []string{"cluster"}),
	}
}
