// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/basal/internal/domain/model"
)

// DataDependencies exposes the stored inputs.
type DataDependencies interface {
	Inputs(ctx context.Context) []model.MetricRecord
}

// DataHandler handles data requests
type DataHandler struct {
	deps DataDependencies
}

// NewDataHandler creates a new data handler
func NewDataHandler(deps DataDependencies) *DataHandler {
	return &DataHandler{deps: deps}
}

// HandleGetData handles GET /data requests
func (h *DataHandler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Inputs(r.Context()))
}
