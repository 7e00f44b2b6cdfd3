// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/basal/internal/adapters/repository"
	"github.com/okian/basal/internal/domain/bmr"
	"github.com/okian/basal/internal/domain/model"
	"github.com/okian/basal/pkg/logger"
	"github.com/okian/basal/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// ErrNotStarted is returned by Construct before Start succeeds.
var ErrNotStarted = errors.New("service not started")

// Service runs the compute pipeline over a session log.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store
	model bmr.Model

	// Configuration
	formula    string
	maxEntries int

	// State
	started      bool
	computations atomic.Int64
	resets       atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFormula selects the BMR equation by name. It is resolved in Start.
func WithFormula(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.formula = name
		}
	}
}

// WithMaxEntries bounds the session log; 0 keeps it unbounded.
func WithMaxEntries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// WithStore replaces the default in-memory session log.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		formula: bmr.MifflinStJeorName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resolves the formula and creates the session log.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	m, err := bmr.New(s.formula)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.model = m

	if s.store == nil {
		s.store = repository.NewSessionLog(ctx, repository.WithMaxEntries(s.maxEntries))
	}

	s.started = true
	s.logger.Info(ctx, "bmr service started",
		logger.String("formula", s.model.Name()),
		logger.Int("maxEntries", s.maxEntries),
	)
	return nil
}

// Stop marks the service stopped. The session log is process scoped and
// is not cleared.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "bmr service stopped",
		logger.Int("entries", s.store.Len(context.Background())),
	)
}

func (s *Service) components() (repository.Store, bmr.Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.model, s.started
}

// Construct computes a result for rec, appends the pair to the session log
// and returns the full output history.
func (s *Service) Construct(ctx context.Context, rec model.MetricRecord) ([]model.Result, error) {
	store, m, started := s.components()
	if !started {
		return nil, ErrNotStarted
	}

	start := time.Now()
	res := m.Compute(rec)
	outputs := store.Append(ctx, rec, res)

	s.computations.Add(1)
	metrics.RecordComputation(m.Name())
	metrics.RecordComputeLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)

	s.logger.Debug(ctx, "computed bmr",
		logger.Any("record", rec),
		logger.Float64("bmr", res.BMR),
		logger.Int("entries", len(outputs)),
	)
	return outputs, nil
}

// Inputs returns the stored records. Before Start it returns an empty slice.
func (s *Service) Inputs(ctx context.Context) []model.MetricRecord {
	store, _, _ := s.components()
	if store == nil {
		return []model.MetricRecord{}
	}
	return store.Inputs(ctx)
}

// Outputs returns the stored results. Before Start it returns an empty slice.
func (s *Service) Outputs(ctx context.Context) []model.Result {
	store, _, _ := s.components()
	if store == nil {
		return []model.Result{}
	}
	return store.Outputs(ctx)
}

// Reset clears the session log. It always succeeds.
func (s *Service) Reset(ctx context.Context) {
	store, _, _ := s.components()
	if store != nil {
		store.Clear(ctx)
	}
	s.resets.Add(1)
	metrics.RecordReset()
	if s.logger != nil {
		s.logger.Info(ctx, "session log cleared")
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	store, m, started := s.components()

	stats := map[string]interface{}{
		"started":      started,
		"formula":      s.formula,
		"maxEntries":   s.maxEntries,
		"computations": s.computations.Load(),
		"resets":       s.resets.Load(),
		"entries":      0,
	}
	if m != nil {
		stats["formula"] = m.Name()
	}
	if store != nil {
		entries := store.Len(context.Background())
		stats["entries"] = entries
		metrics.UpdateSessionLogEntries(entries)
	}
	return stats
}
