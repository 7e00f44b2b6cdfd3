// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// ResetDependencies clears the session log.
type ResetDependencies interface {
	Reset(ctx context.Context)
}

// ResetHandler handles reset requests
type ResetHandler struct {
	deps ResetDependencies
}

// NewResetHandler creates a new reset handler
func NewResetHandler(deps ResetDependencies) *ResetHandler {
	return &ResetHandler{deps: deps}
}

// HandleReset handles POST /reset requests. Resetting an empty log succeeds.
func (h *ResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.Reset(r.Context())
	writeJSON(w, http.StatusOK, ackResponse{Message: messageCleared, Status: statusReset})
}
