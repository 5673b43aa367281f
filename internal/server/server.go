package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/drakos74/mall-segment/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Action string

type Method string

const (
	Data Action = "data"
	Api  Action = "api"

	GET  Method = "GET"
	POST Method = "POST"
)

type Handler func(r *http.Request) ([]byte, int, error)

type Route struct {
	Action Action
	Path   string
	Method Method
	Exec   Handler
}

type Server struct {
	name   string
	port   int
	debug  bool
	charts string
	lock   *sync.Mutex
	routes []Route
}

func NewServer(name string, port int) *Server {
	return &Server{
		name:   name,
		port:   port,
		lock:   new(sync.Mutex),
		routes: make([]Route, 0),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// Charts serves the rendered html files of the given directory under /charts/.
func (s *Server) Charts(dir string) *Server {
	s.charts = dir
	return s
}

// AddRoute adds a single route to the server
func (s *Server) AddRoute(method Method, action Action, path string, exec Handler) *Server {
	s.routes = append(s.routes, Route{
		Action: action,
		Path:   path,
		Method: method,
		Exec:   exec,
	})
	return s
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

func (s *Server) handle(method Method, handler Handler) func(w http.ResponseWriter, r *http.Request) {
	// we should only handle one request per time,
	// a pipeline run triggered from a request rewrites the stored results.
	name := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name()
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		defer s.lock.Unlock()
		start := time.Now()
		defer func() {
			log.Debug().
				Str("method", string(method)).
				Str("handler", name).
				Float64("duration", time.Since(start).Seconds()).
				Msg("completed request")
		}()
		requestMethod := Method(r.Method)
		switch requestMethod {
		case method:
			b, code, err := handler(r)
			if err != nil {
				s.error(w, err)
			} else if code != http.StatusOK {
				s.code(w, b, code)
			} else {
				s.respond(w, b)
			}
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}
}

// Handler builds the http handler for the registered routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range s.routes {
		if route.Path != "" {
			mux.HandleFunc(fmt.Sprintf("/%s/%s", route.Action, route.Path), s.handle(route.Method, route.Exec))
		} else {
			mux.HandleFunc(fmt.Sprintf("/%s", route.Action), s.handle(route.Method, route.Exec))
		}
	}
	if s.charts != "" {
		mux.Handle("/charts/", http.StripPrefix("/charts/", http.FileServer(http.Dir(s.charts))))
	}
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run starts the server
func (s *Server) Run() error {
	log.Warn().Str("server", s.name).Int("port", s.port).Str("charts", s.charts).Msg("starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", s.port), s.Handler()); err != nil {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) code(w http.ResponseWriter, b []byte, code int) {
	w.WriteHeader(code)
	s.respond(w, b)
}

func (s *Server) respond(w http.ResponseWriter, b []byte) {
	_, err := w.Write(b)
	if err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("error for http request")
	s.code(w, []byte(err.Error()), http.StatusInternalServerError)
}

func Live() Route {
	return Route{
		Action: Data,
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, 200, nil
		},
	}
}

// Key resolves the storage key for a request.
type Key func(r *http.Request) (storage.Key, error)

// Stored serves the value kept in the store under the key resolved from the request.
// A key that cannot be resolved is answered with a bad request.
func Stored(path string, store storage.Persistence, key Key, value func() interface{}) Route {
	return Route{
		Action: Api,
		Path:   path,
		Method: GET,
		Exec: func(r *http.Request) ([]byte, int, error) {
			k, err := key(r)
			if err != nil {
				return []byte(err.Error()), http.StatusBadRequest, nil
			}
			v := value()
			if err := store.Load(k, v); err != nil {
				if errors.Is(err, storage.NotFoundErr) {
					return []byte(err.Error()), http.StatusNotFound, nil
				}
				return nil, 0, err
			}
			b, err := json.Marshal(v)
			if err != nil {
				return nil, 0, fmt.Errorf("could not encode '%+v': %w", k, err)
			}
			return b, http.StatusOK, nil
		},
	}
}

// Events serves all the values appended to the registry under the given key.
func Events(path string, registry storage.Registry, key storage.K) Route {
	return Route{
		Action: Api,
		Path:   path,
		Method: GET,
		Exec: func(r *http.Request) ([]byte, int, error) {
			events := make([]json.RawMessage, 0)
			if err := registry.GetAll(key, &events); err != nil && !errors.Is(err, storage.NotFoundErr) {
				return nil, 0, err
			}
			b, err := json.Marshal(events)
			if err != nil {
				return nil, 0, fmt.Errorf("could not encode events: %w", err)
			}
			return b, http.StatusOK, nil
		},
	}
}

func JsonRead(r *http.Request, debug bool, v interface{}) error {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if debug {
		log.Info().
			Str("url", fmt.Sprintf("%+v", r.URL)).
			Str("request", r.RequestURI).
			Str("remote-address", r.RemoteAddr).
			Str("method", r.Method).
			Str("body", string(body)).
			Msg("received payload")
	}
	if len(body) > 0 {
		err = json.Unmarshal(body, v)
		if err != nil {
			return err
		}
	}
	return nil
}
