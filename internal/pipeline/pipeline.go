package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/metrics"
	"github.com/drakos74/mall-segment/internal/render"
	"github.com/drakos74/mall-segment/internal/storage"
	jsonstore "github.com/drakos74/mall-segment/internal/storage/file/json"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SetupStage    = "setup"
	CleanStage    = "clean"
	ExploreStage  = "explore"
	ElbowStage    = "elbow"
	ClusterStage  = "cluster"
	EvaluateStage = "evaluate"
)

const (
	WCSSLabel       = "wcss"
	LinkageLabel    = "linkage"
	AssignmentLabel = "assignment"
	SummaryLabel    = "summary"
	EventsLabel     = "stages"
)

// Event is the record of a single stage execution.
type Event struct {
	Run      string    `json:"run"`
	Stage    string    `json:"stage"`
	Status   string    `json:"status"`
	Time     time.Time `json:"time"`
	Duration float64   `json:"duration"`
	Error    string    `json:"error,omitempty"`
}

// Report collects the products of a full run.
type Report struct {
	ID        string       `json:"id"`
	Dataset   string       `json:"dataset"`
	Series    ml.Series    `json:"series"`
	Linkage   ml.Linkage   `json:"linkage"`
	Summaries []ml.Summary `json:"summaries"`
	Files     []string     `json:"files"`
	Duration  float64      `json:"duration"`
}

// Pipeline runs the segmentation stages for a config.
type Pipeline struct {
	id       string
	config   Config
	store    storage.Persistence
	registry storage.Registry
	out      io.Writer
	files    []string
}

// New creates a pipeline that keeps its results as json files under the results directory.
func New(config Config) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Pipeline{
		id:       uuid.New().String(),
		config:   config,
		store:    jsonstore.NewJsonBlob(config.Paths.Storage(), config.Dataset, false),
		registry: jsonstore.NewEventRegistry(filepath.Join(config.Paths.Storage(), "events")),
		out:      os.Stdout,
		files:    make([]string, 0),
	}, nil
}

// WithStorage replaces the result storage and the event registry.
func (p *Pipeline) WithStorage(store storage.Persistence, registry storage.Registry) *Pipeline {
	p.store = store
	p.registry = registry
	return p
}

// WithOutput sets the writer for the terminal tables and plots.
func (p *Pipeline) WithOutput(w io.Writer) *Pipeline {
	p.out = w
	return p
}

func (p *Pipeline) ID() string {
	return p.id
}

func (p *Pipeline) Config() Config {
	return p.config
}

// Files returns the files written so far.
func (p *Pipeline) Files() []string {
	return append([]string{}, p.files...)
}

// WCSSKey is the storage key of the elbow series.
func WCSSKey(config Config) storage.Key {
	return storage.Key{
		Hash:    int64(config.Elbow.MaxClusters),
		Dataset: config.Dataset,
		Label:   fmt.Sprintf("%s_%s", WCSSLabel, config.Elbow.Method),
	}
}

// ClusterKey is the storage key of the results for the configured number of clusters.
func ClusterKey(config Config, label string) storage.Key {
	return storage.Key{
		Hash:    int64(config.Cluster.K),
		Dataset: config.Dataset,
		Label:   label,
	}
}

// EventsKey is the registry key of the stage events.
func EventsKey(config Config) storage.K {
	return storage.K{
		Dataset: config.Dataset,
		Label:   EventsLabel,
	}
}

// Setup creates the output directories.
func (p *Pipeline) Setup() error {
	return p.stage(SetupStage, func() error {
		dirs := []string{
			filepath.Dir(p.config.Paths.Cleaned),
			p.config.Paths.Visualizations(),
			p.config.Paths.Clustering(),
			p.config.Paths.Evaluation(),
			p.config.Paths.Storage(),
		}
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create dir '%s': %w", dir, err)
			}
		}
		return nil
	})
}

// Run executes all stages in order and stops at the first failure.
func (p *Pipeline) Run() (*Report, error) {
	start := time.Now()
	report := &Report{
		ID:      p.id,
		Dataset: p.config.Dataset,
	}
	if err := p.Setup(); err != nil {
		return nil, err
	}
	if _, err := p.Clean(); err != nil {
		return nil, err
	}
	if err := p.Explore(); err != nil {
		return nil, err
	}
	series, err := p.Elbow()
	if err != nil {
		return nil, err
	}
	report.Series = series
	_, linkage, err := p.Cluster()
	if err != nil {
		return nil, err
	}
	report.Linkage = linkage
	summaries, err := p.Evaluate()
	if err != nil {
		return nil, err
	}
	report.Summaries = summaries
	report.Files = p.Files()
	report.Duration = time.Since(start).Seconds()
	log.Info().
		Str("run", p.id).
		Int("files", len(report.Files)).
		Float64("duration", report.Duration).
		Msg("pipeline completed")
	return report, nil
}

// stage times the execution, tracks it in the metrics and records it in the registry.
func (p *Pipeline) stage(name string, exec func() error) error {
	start := time.Now()
	log.Info().Str("run", p.id).Str("stage", name).Msg("starting stage")

	err := exec()
	metrics.Observer.Track(name, start, err)

	event := Event{
		Run:      p.id,
		Stage:    name,
		Status:   metrics.Success,
		Time:     start,
		Duration: time.Since(start).Seconds(),
	}
	if err != nil {
		event.Status = metrics.Failure
		event.Error = err.Error()
	}
	if rErr := p.registry.Add(EventsKey(p.config), event); rErr != nil {
		log.Warn().Err(rErr).Str("stage", name).Msg("could not record event")
	}

	if err != nil {
		log.Error().Err(err).Str("run", p.id).Str("stage", name).Msg("stage failed")
		return fmt.Errorf("stage '%s' failed: %w", name, err)
	}
	log.Info().
		Str("run", p.id).
		Str("stage", name).
		Float64("duration", event.Duration).
		Msg("completed stage")
	return nil
}

func (p *Pipeline) render(path string, title string, cc ...components.Charter) error {
	if err := render.Save(path, title, cc...); err != nil {
		return err
	}
	p.files = append(p.files, path)
	return nil
}

func (p *Pipeline) stored(path string) {
	log.Info().Str("path", path).Msg("saved file")
	p.files = append(p.files, path)
}
