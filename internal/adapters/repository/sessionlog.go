// Package repository defines the session log store interface.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/basal/internal/domain/model"
	"github.com/okian/basal/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// SessionLog is an in-memory Store. A single RWMutex guards both
// sequences so appends and clears never interleave.
type SessionLog struct {
	mu      sync.RWMutex
	inputs  []model.MetricRecord
	outputs []model.Result

	// maxEntries caps the log size; 0 means unbounded.
	maxEntries int
}

var _ Store = (*SessionLog)(nil)

// NewSessionLog creates an empty session log.
func NewSessionLog(_ context.Context, opts ...Option) *SessionLog {
	s := &SessionLog{
		inputs:  []model.MetricRecord{},
		outputs: []model.Result{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append implements Store.
func (s *SessionLog) Append(_ context.Context, rec model.MetricRecord, res model.Result) []model.Result {
	start := time.Now()

	s.mu.Lock()
	s.inputs = append(s.inputs, rec)
	s.outputs = append(s.outputs, res)
	if s.maxEntries > 0 && len(s.inputs) > s.maxEntries {
		drop := len(s.inputs) - s.maxEntries
		s.inputs = append([]model.MetricRecord{}, s.inputs[drop:]...)
		s.outputs = append([]model.Result{}, s.outputs[drop:]...)
		metrics.RecordSessionLogEvictions(drop)
	}
	snapshot := make([]model.Result, len(s.outputs))
	copy(snapshot, s.outputs)
	size := len(s.inputs)
	s.mu.Unlock()

	metrics.UpdateSessionLogEntries(size)
	metrics.RecordRepositoryAppendLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)
	return snapshot
}

// Inputs implements Store.
func (s *SessionLog) Inputs(_ context.Context) []model.MetricRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MetricRecord, len(s.inputs))
	copy(out, s.inputs)
	return out
}

// Outputs implements Store.
func (s *SessionLog) Outputs(_ context.Context) []model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Result, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// Clear implements Store.
func (s *SessionLog) Clear(_ context.Context) {
	s.mu.Lock()
	s.inputs = []model.MetricRecord{}
	s.outputs = []model.Result{}
	s.mu.Unlock()

	metrics.UpdateSessionLogEntries(0)
}

// Len implements Store.
func (s *SessionLog) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inputs)
}
