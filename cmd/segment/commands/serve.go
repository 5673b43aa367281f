package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/pipeline"
	"github.com/drakos74/mall-segment/internal/server"
	"github.com/drakos74/mall-segment/internal/storage"
	jsonstore "github.com/drakos74/mall-segment/internal/storage/file/json"
	"github.com/spf13/cobra"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rendered charts and the stored results",
	Long: `Serve the results directory over http.

Routes:
  /charts/...      rendered html charts
  /api/wcss        elbow series
  /api/linkage     merge history of the clustering
  /api/assignment  cluster label of each row
  /api/summary     size and feature averages of each cluster
                   the result routes follow the latest run, or ?k=, ?max_clusters=, ?method=
  /api/events      stage executions
  /api/run         POST {"k": 4, "max_clusters": 10} runs all stages
  /data            liveness
  /metrics         prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		srv := newServer(cfg, port)
		if debug {
			srv.Debug()
		}
		return srv.Run()
	},
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 8080, "http port")
}

// RunRequest overrides the config for a run triggered over http.
type RunRequest struct {
	K           int `json:"k"`
	MaxClusters int `json:"max_clusters"`
}

// latestRun tracks the config of the latest run, so that the result routes follow it.
type latestRun struct {
	lock   *sync.RWMutex
	config pipeline.Config
}

func (s *latestRun) latest() pipeline.Config {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.config
}

func (s *latestRun) update(c pipeline.Config) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.config = c
}

// resolve applies the k, max_clusters and method query parameters to the latest config.
func (s *latestRun) resolve(r *http.Request) (pipeline.Config, error) {
	c := s.latest()
	query := r.URL.Query()
	for name, v := range map[string]*int{
		"k":            &c.Cluster.K,
		"max_clusters": &c.Elbow.MaxClusters,
	} {
		q := query.Get(name)
		if q == "" {
			continue
		}
		i, err := strconv.Atoi(q)
		if err != nil || i < 1 {
			return c, fmt.Errorf("invalid '%s' parameter '%s': %w", name, q, ml.InvalidParameterErr)
		}
		*v = i
	}
	if m := query.Get("method"); m != "" {
		c.Elbow.Method = m
	}
	return c, nil
}

func (s *latestRun) wcss(r *http.Request) (storage.Key, error) {
	c, err := s.resolve(r)
	if err != nil {
		return storage.Key{}, err
	}
	return pipeline.WCSSKey(c), nil
}

func (s *latestRun) cluster(label string) server.Key {
	return func(r *http.Request) (storage.Key, error) {
		c, err := s.resolve(r)
		if err != nil {
			return storage.Key{}, err
		}
		return pipeline.ClusterKey(c, label), nil
	}
}

func newServer(cfg pipeline.Config, port int) *server.Server {
	store := jsonstore.NewJsonBlob(cfg.Paths.Storage(), cfg.Dataset, false)
	registry := jsonstore.NewEventRegistry(filepath.Join(cfg.Paths.Storage(), "events"))
	latest := &latestRun{
		lock:   new(sync.RWMutex),
		config: cfg,
	}

	return server.NewServer("segment", port).
		Charts(cfg.Paths.Results).
		Add(server.Live()).
		Add(server.Stored("wcss", store, latest.wcss, func() interface{} {
			return &ml.Series{}
		})).
		Add(server.Stored("linkage", store, latest.cluster(pipeline.LinkageLabel), func() interface{} {
			return &ml.Linkage{}
		})).
		Add(server.Stored("assignment", store, latest.cluster(pipeline.AssignmentLabel), func() interface{} {
			return &ml.Assignment{}
		})).
		Add(server.Stored("summary", store, latest.cluster(pipeline.SummaryLabel), func() interface{} {
			return &[]ml.Summary{}
		})).
		Add(server.Events("events", registry, pipeline.EventsKey(cfg))).
		AddRoute(server.POST, server.Api, "run", func(r *http.Request) ([]byte, int, error) {
			var request RunRequest
			if err := server.JsonRead(r, debug, &request); err != nil {
				return []byte(err.Error()), http.StatusBadRequest, nil
			}
			c := cfg
			if request.K > 0 {
				c.Cluster.K = request.K
			}
			if request.MaxClusters > 0 {
				c.Elbow.MaxClusters = request.MaxClusters
			}
			p, err := pipeline.New(c)
			if err != nil {
				return []byte(err.Error()), http.StatusBadRequest, nil
			}
			report, err := p.WithOutput(ioutil.Discard).Run()
			if err != nil {
				if errors.Is(err, ml.InvalidParameterErr) {
					return []byte(err.Error()), http.StatusBadRequest, nil
				}
				return nil, 0, fmt.Errorf("could not run pipeline: %w", err)
			}
			latest.update(c)
			b, err := json.Marshal(report)
			if err != nil {
				return nil, 0, fmt.Errorf("could not encode report: %w", err)
			}
			return b, http.StatusOK, nil
		})
}
