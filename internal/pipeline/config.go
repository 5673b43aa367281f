package pipeline

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/drakos74/mall-segment/internal/math/ml"
)

// Config defines the inputs, outputs and parameters of the pipeline stages.
type Config struct {
	Dataset  string   `json:"dataset"`
	Paths    Paths    `json:"paths"`
	Columns  Columns  `json:"columns"`
	Explore  Explore  `json:"explore"`
	Elbow    Elbow    `json:"elbow"`
	Cluster  Cluster  `json:"cluster"`
	Evaluate Evaluate `json:"evaluate"`
}

// Paths are the file locations of the pipeline.
type Paths struct {
	Raw     string `json:"raw"`
	Cleaned string `json:"cleaned"`
	Results string `json:"results"`
}

func (p Paths) Visualizations() string {
	return filepath.Join(p.Results, "visualizations")
}

func (p Paths) Clustering() string {
	return filepath.Join(p.Results, "clustering")
}

func (p Paths) Evaluation() string {
	return filepath.Join(p.Results, "evaluation")
}

func (p Paths) Storage() string {
	return filepath.Join(p.Results, "storage")
}

// Columns names the columns of the dataset.
type Columns struct {
	ID       string   `json:"id"`
	Group    string   `json:"group"`
	Cluster  string   `json:"cluster"`
	Features []string `json:"features"`
}

type Explore struct {
	Bins  int         `json:"bins"`
	Pairs [][2]string `json:"pairs"`
}

type Elbow struct {
	MaxClusters int    `json:"max_clusters"`
	Method      string `json:"method"`
	Iterations  int    `json:"iterations"`
	Parallel    bool   `json:"parallel"`
}

type Cluster struct {
	K      int    `json:"k"`
	Prefix string `json:"prefix"`
}

func (c Cluster) Clustered(p Paths) string {
	return filepath.Join(p.Clustering(), fmt.Sprintf("%s_clusters.csv", c.Prefix))
}

type Evaluate struct {
	Pairs [][2]string `json:"pairs"`
}

// DefaultConfig is the configuration for the mall customers dataset.
func DefaultConfig() Config {
	age := "Age"
	income := "Annual Income (k$)"
	score := "Spending Score (1-100)"
	return Config{
		Dataset: "mall-customers",
		Paths: Paths{
			Raw:     "data/Mall_Customers.csv",
			Cleaned: "data/cleaned_data.csv",
			Results: "results",
		},
		Columns: Columns{
			ID:       "CustomerID",
			Group:    "Gender",
			Cluster:  "Cluster",
			Features: []string{age, income, score},
		},
		Explore: Explore{
			Bins:  20,
			Pairs: [][2]string{{age, score}, {income, score}, {age, income}},
		},
		Elbow: Elbow{
			MaxClusters: 10,
			Method:      string(ml.WardMethod),
			Iterations:  30,
		},
		Cluster: Cluster{
			K:      4,
			Prefix: "customer_segmentation",
		},
		Evaluate: Evaluate{
			Pairs: [][2]string{{age, score}, {income, score}},
		},
	}
}

// Validate checks the configuration before any stage runs.
func (c Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("dataset name is required: %w", ml.InvalidParameterErr)
	}
	if len(c.Columns.Features) == 0 {
		return fmt.Errorf("at least one feature is required: %w", ml.InvalidParameterErr)
	}
	if c.Columns.Cluster == "" {
		return fmt.Errorf("cluster column is required: %w", ml.InvalidParameterErr)
	}
	if c.Elbow.MaxClusters < 1 {
		return fmt.Errorf("max clusters %d must be positive: %w", c.Elbow.MaxClusters, ml.InvalidParameterErr)
	}
	switch ml.Method(c.Elbow.Method) {
	case ml.WardMethod, ml.KMeansMethod:
	default:
		return fmt.Errorf("unknown elbow method '%s': %w", c.Elbow.Method, ml.InvalidParameterErr)
	}
	if c.Cluster.K < 1 {
		return fmt.Errorf("k %d must be positive: %w", c.Cluster.K, ml.InvalidParameterErr)
	}
	if c.Explore.Bins < 1 {
		return fmt.Errorf("bins %d must be positive: %w", c.Explore.Bins, ml.InvalidParameterErr)
	}
	return nil
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// slug turns a column name into a file name friendly token.
func slug(s string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(s), "_"), "_")
}
