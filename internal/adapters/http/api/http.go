// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/basal/internal/domain/model"
)

// Response messages returned by the compute and reset endpoints.
const (
	messageReceived = "Data received!"
	messageCleared  = "Data cleared!"
	statusConstruct = "Success!"
	statusReset     = "success"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DataDependencies
	ConstructDependencies
	ResetDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dataHandler      *DataHandler
	constructHandler *ConstructHandler
	resetHandler     *ResetHandler
	limiter          *rate.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	rateLimit    float64
	rateBurst    int
}

// WithMaxBodyBytes caps POST request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithRateLimit limits POST /model-construct to rps requests per second
// with the given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(o *serverOptions) {
		if rps > 0 && burst > 0 {
			o.rateLimit = rps
			o.rateBurst = burst
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	var limiter *rate.Limiter
	if o.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.rateLimit), o.rateBurst)
	}
	return &Server{
		limiter:          limiter,
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dataHandler:      NewDataHandler(deps),
		constructHandler: NewConstructHandler(deps, o.maxBodyBytes),
		resetHandler:     NewResetHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", instrument(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", instrument(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/data", instrument(s.dataHandler.HandleGetData, "data"))
	mux.HandleFunc("/model-construct", instrument(s.limit(s.constructHandler.HandleModelConstruct), "model-construct"))
	mux.HandleFunc("/reset", instrument(s.resetHandler.HandleReset, "reset"))
}

// limit rejects requests with 429 once the limiter runs dry. The session
// log is shared by all clients, so one bucket serves every caller.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api.model_construct", ErrRateLimited))
			return
		}
		next(w, r)
	}
}

func instrument(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(next, endpoint))
}

// constructResponse is the body of a successful POST /model-construct.
type constructResponse struct {
	Message string         `json:"message"`
	DataOut []model.Result `json:"data_out"`
	Status  string         `json:"status"`
}

// ackResponse is the body of a successful POST /reset.
type ackResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
