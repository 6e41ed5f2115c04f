package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/pagecast/internal/server/response"
	"github.com/agentstation/pagecast/pkg/registration"
)

// HandleHealth handles GET /health. It is a liveness probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "pagecast",
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready while its state
// accepts pushes and at least one registration exists.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	st := h.client.State()
	regs := h.client.Registrations()

	if st.Closed() {
		response.ServiceUnavailable(w, "state is closed")
		return
	}
	if len(regs) == 0 {
		response.ServiceUnavailable(w, "no registrations configured")
		return
	}

	clients := 0
	if h.hub != nil {
		clients = h.hub.ClientCount()
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"history":           st.Len(),
		"registrations":     len(regs),
		"page_types":        len(registration.Types(regs)),
		"websocket_clients": clients,
	})
}
