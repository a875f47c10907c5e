package api

import (
	"net/http"

	"github.com/matheus3301/smsdash/internal/status"
)

// StatusSource reports gateway health.
type StatusSource interface {
	Snapshot() status.Snapshot
}

// GatewayHandler serves liveness and health.
type GatewayHandler struct {
	status StatusSource
}

// NewGatewayHandler creates a handler over src.
func NewGatewayHandler(src StatusSource) *GatewayHandler {
	return &GatewayHandler{status: src}
}

// Health handles GET /api/health.
func (h *GatewayHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Status handles GET /api/status.
func (h *GatewayHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status.Snapshot())
}
