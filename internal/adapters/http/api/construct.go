// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/basal/internal/domain/model"
	"github.com/okian/basal/internal/domain/normalize"
	"github.com/okian/basal/pkg/logger"
	"github.com/okian/basal/pkg/metrics"
)

// ConstructDependencies runs the compute pipeline for a normalized record.
type ConstructDependencies interface {
	Construct(ctx context.Context, rec model.MetricRecord) ([]model.Result, error)
}

// ConstructHandler handles model construction requests
type ConstructHandler struct {
	deps         ConstructDependencies
	maxBodyBytes int64
}

// NewConstructHandler creates a new construct handler
func NewConstructHandler(deps ConstructDependencies, maxBodyBytes int64) *ConstructHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &ConstructHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleModelConstruct handles POST /model-construct requests
func (h *ConstructHandler) HandleModelConstruct(w http.ResponseWriter, r *http.Request) {
	const op = "api.model_construct"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	rec, err := normalize.Decode(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", WrapKind(op, ErrBodyTooBig, err))
			return
		}
		logger.Get().Debug(ctx, "rejected payload",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Error(err),
		)
		var verr *normalize.ValidationError
		if errors.As(err, &verr) {
			metrics.RecordValidationFailure(verr.Field)
			writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	outputs, err := h.deps.Construct(ctx, rec)
	if err != nil {
		logger.Get().Error(ctx, "construct failed",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}

	writeJSON(w, http.StatusOK, constructResponse{
		Message: messageReceived,
		DataOut: outputs,
		Status:  statusConstruct,
	})
}
