// Package server exposes the state of running and finished experiments
// over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeu5/frozenlake-rl/types"
)

// Store keeps the live trajectories and finished results by experiment name
type Store struct {
	lock        *sync.RWMutex
	trajectory  map[string][]types.WinRateSample
	evaluations map[string]float64
	results     map[string]*types.ExperimentResult
}

var _ types.Listener = &Store{}

func NewStore() *Store {
	return &Store{
		lock:        new(sync.RWMutex),
		trajectory:  make(map[string][]types.WinRateSample),
		evaluations: make(map[string]float64),
		results:     make(map[string]*types.ExperimentResult),
	}
}

func (s *Store) EpisodeDone(_ string, _ *types.EpisodeContext) {}

func (s *Store) WinRateSampled(name string, sample types.WinRateSample) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.trajectory[name] = append(s.trajectory[name], sample)
}

func (s *Store) Evaluated(name string, winRate float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.evaluations[name] = winRate
}

// AddResult records a finished run, replacing the live trajectory
func (s *Store) AddResult(result *types.ExperimentResult) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.results[result.Name] = result
	s.trajectory[result.Name] = append([]types.WinRateSample(nil), result.Trajectory...)
	s.evaluations[result.Name] = result.EvaluationWinRate
}

// Names lists every experiment the store knows about
func (s *Store) Names() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	seen := make(map[string]bool)
	for name := range s.trajectory {
		seen[name] = true
	}
	for name := range s.results {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Trajectory(name string) ([]types.WinRateSample, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	t, ok := s.trajectory[name]
	if !ok {
		return nil, false
	}
	return append([]types.WinRateSample(nil), t...), true
}

func (s *Store) Evaluation(name string) (float64, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	w, ok := s.evaluations[name]
	return w, ok
}

func (s *Store) Result(name string) (*types.ExperimentResult, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	r, ok := s.results[name]
	return r, ok
}

// PolicyRenderer draws the greedy policy of a table as text
type PolicyRenderer func(table [][]float64) string

// Server serves the store and the prometheus metrics
type Server struct {
	Addr   string
	ctx    context.Context
	server *http.Server

	store  *Store
	policy PolicyRenderer
}

// NewServer creates the router. The server shuts down when ctx is done.
func NewServer(ctx context.Context, addr string, store *Store, gatherer prometheus.Gatherer, policy PolicyRenderer) *Server {
	s := &Server{
		Addr:   addr,
		ctx:    ctx,
		store:  store,
		policy: policy,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/healthz", s.handleHealth)
	r.GET("/experiments", s.handleExperiments)
	r.GET("/experiments/:name/trajectory", s.handleTrajectory)
	r.GET("/experiments/:name/evaluation", s.handleEvaluation)
	r.GET("/experiments/:name/tables", s.handleTables)
	r.GET("/experiments/:name/policy", s.handlePolicy)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens in the background and returns immediately
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
	return errCh
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *Server) handleExperiments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"experiments": s.store.Names()})
}

func (s *Server) handleTrajectory(c *gin.Context) {
	name := c.Param("name")
	t, ok := s.store.Trajectory(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown experiment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "trajectory": t})
}

func (s *Server) handleEvaluation(c *gin.Context) {
	name := c.Param("name")
	w, ok := s.store.Evaluation(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not evaluated yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "win_rate": w})
}

func (s *Server) handleTables(c *gin.Context) {
	name := c.Param("name")
	r, ok := s.store.Result(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no finished run"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "tables": r.Tables})
}

func (s *Server) handlePolicy(c *gin.Context) {
	name := c.Param("name")
	r, ok := s.store.Result(name)
	if !ok || len(r.Tables) == 0 || s.policy == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no finished run"})
		return
	}
	policies := make([]string, len(r.Tables))
	for i, t := range r.Tables {
		policies[i] = s.policy(t)
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "policies": policies})
}
