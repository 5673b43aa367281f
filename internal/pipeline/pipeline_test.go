package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/mall-segment/internal/dataset"
	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/storage"
	jsonstore "github.com/drakos74/mall-segment/internal/storage/file/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customers = `CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)
1,Male,19,15,39
2,Male,21,15,81
3,Female,20,16,6
4,Female,23,16,77
5,Female,31,17,40
6,Female,22,17,76
7,Female,35,18,6
8,Female,23,18,94
9,Male,64,19,3
10,Female,30,19,72
11,Male,67,19,14
12,Female,35,19,99
`

func testConfig(t *testing.T) Config {
	dir := t.TempDir()
	raw := filepath.Join(dir, "Mall_Customers.csv")
	require.NoError(t, os.WriteFile(raw, []byte(customers), 0644))

	config := DefaultConfig()
	config.Paths = Paths{
		Raw:     raw,
		Cleaned: filepath.Join(dir, "data", "cleaned_data.csv"),
		Results: filepath.Join(dir, "results"),
	}
	config.Elbow.MaxClusters = 6
	config.Cluster.K = 3
	config.Explore.Bins = 5
	return config
}

func TestPipeline_Run(t *testing.T) {
	config := testConfig(t)
	p, err := New(config)
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := p.WithOutput(&out).Run()
	require.NoError(t, err)

	assert.Equal(t, p.ID(), report.ID)
	assert.Len(t, report.Series, 6)
	assert.Len(t, report.Linkage, 11)
	for i := 1; i < len(report.Series); i++ {
		assert.LessOrEqual(t, report.Series[i].WCSS, report.Series[i-1].WCSS+1e-9)
	}

	size := 0
	for _, s := range report.Summaries {
		size += s.Size
	}
	assert.Equal(t, 12, size)
	assert.Len(t, report.Summaries, 3)

	expected := []string{
		config.Paths.Cleaned,
		filepath.Join(config.Paths.Visualizations(), "age_distribution.html"),
		filepath.Join(config.Paths.Visualizations(), "annual_income_k_distribution.html"),
		filepath.Join(config.Paths.Visualizations(), "spending_score_1_100_distribution.html"),
		filepath.Join(config.Paths.Visualizations(), "age_vs_spending_score_1_100.html"),
		filepath.Join(config.Paths.Visualizations(), "annual_income_k_vs_spending_score_1_100.html"),
		filepath.Join(config.Paths.Visualizations(), "age_vs_annual_income_k.html"),
		filepath.Join(config.Paths.Visualizations(), "gender_distribution.html"),
		filepath.Join(config.Paths.Visualizations(), "elbow_method.html"),
		filepath.Join(config.Paths.Clustering(), "customer_segmentation_detailed_dendrogram.html"),
		config.Cluster.Clustered(config.Paths),
		filepath.Join(config.Paths.Evaluation(), "cluster_analysis.csv"),
		filepath.Join(config.Paths.Evaluation(), "age_vs_spending_score_1_100_clusters.html"),
		filepath.Join(config.Paths.Evaluation(), "annual_income_k_vs_spending_score_1_100_clusters.html"),
	}
	assert.ElementsMatch(t, expected, report.Files)
	for _, f := range expected {
		assert.FileExists(t, f)
	}

	assert.Contains(t, out.String(), "Summary Statistics")
	assert.Contains(t, out.String(), "Cluster Summary")

	clustered, err := dataset.Load(config.Cluster.Clustered(config.Paths))
	require.NoError(t, err)
	assert.Equal(t, "Cluster", clustered.Header[len(clustered.Header)-1])
	assert.Equal(t, 12, clustered.Len())

	analysis, err := dataset.Load(filepath.Join(config.Paths.Evaluation(), "cluster_analysis.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cluster", "Cluster_Size", "Avg_Age", "Avg_Annual Income (k$)", "Avg_Spending Score (1-100)"}, analysis.Header)
	assert.Equal(t, 3, analysis.Len())

	store := jsonstore.NewJsonBlob(config.Paths.Storage(), config.Dataset, false)
	var series ml.Series
	require.NoError(t, store.Load(WCSSKey(config), &series))
	assert.Equal(t, report.Series, series)

	var summaries []ml.Summary
	require.NoError(t, store.Load(ClusterKey(config, SummaryLabel), &summaries))
	assert.Equal(t, len(report.Summaries), len(summaries))

	var assignment ml.Assignment
	require.NoError(t, store.Load(ClusterKey(config, AssignmentLabel), &assignment))
	assert.Len(t, assignment, 12)
	assert.Equal(t, 3, assignment.K())

	var events []Event
	registry := jsonstore.NewEventRegistry(filepath.Join(config.Paths.Storage(), "events"))
	require.NoError(t, registry.GetAll(EventsKey(config), &events))
	stages := make([]string, len(events))
	for i, e := range events {
		stages[i] = e.Stage
		assert.Equal(t, report.ID, e.Run)
		assert.Equal(t, "success", e.Status)
	}
	assert.Equal(t, []string{SetupStage, CleanStage, ExploreStage, ElbowStage, ClusterStage, EvaluateStage}, stages)
}

func TestPipeline_Clean(t *testing.T) {
	config := testConfig(t)
	p, err := New(config)
	require.NoError(t, err)
	p.WithOutput(&bytes.Buffer{}).WithStorage(storage.NewVoidStorage(), storage.NewVoidRegistry())

	require.NoError(t, p.Setup())
	cleaned, err := p.Clean()
	require.NoError(t, err)

	saved, err := dataset.Load(config.Paths.Cleaned)
	require.NoError(t, err)
	assert.Equal(t, cleaned.Records, saved.Records)

	for _, feature := range config.Columns.Features {
		descriptions, err := saved.Describe(feature)
		require.NoError(t, err)
		assert.InDelta(t, 0, descriptions[0].Mean, 1e-9)
	}
}

func TestPipeline_Errors(t *testing.T) {
	type test struct {
		config func(config Config) Config
		exec   func(p *Pipeline) error
		err    error
	}

	tests := map[string]test{
		"missing-raw": {
			config: func(config Config) Config {
				config.Paths.Raw = filepath.Join(filepath.Dir(config.Paths.Raw), "missing.csv")
				return config
			},
			exec: func(p *Pipeline) error {
				_, err := p.Clean()
				return err
			},
			err: storage.NotFoundErr,
		},
		"elbow-before-clean": {
			config: func(config Config) Config {
				return config
			},
			exec: func(p *Pipeline) error {
				_, err := p.Elbow()
				return err
			},
			err: storage.NotFoundErr,
		},
		"too-many-clusters": {
			config: func(config Config) Config {
				config.Cluster.K = 13
				return config
			},
			exec: func(p *Pipeline) error {
				if _, err := p.Clean(); err != nil {
					return err
				}
				_, _, err := p.Cluster()
				return err
			},
			err: ml.InvalidParameterErr,
		},
		"elbow-beyond-rows": {
			config: func(config Config) Config {
				config.Elbow.MaxClusters = 20
				return config
			},
			exec: func(p *Pipeline) error {
				if _, err := p.Clean(); err != nil {
					return err
				}
				_, err := p.Elbow()
				return err
			},
			err: ml.InvalidParameterErr,
		},
		"evaluate-before-cluster": {
			config: func(config Config) Config {
				return config
			},
			exec: func(p *Pipeline) error {
				_, err := p.Evaluate()
				return err
			},
			err: storage.NotFoundErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := New(tt.config(testConfig(t)))
			require.NoError(t, err)
			p.WithOutput(&bytes.Buffer{}).WithStorage(storage.NewVoidStorage(), storage.NewVoidRegistry())
			require.NoError(t, p.Setup())

			err = tt.exec(p)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), err.Error())
		})
	}
}
