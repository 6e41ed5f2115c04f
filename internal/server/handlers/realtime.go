package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/agentstation/pagecast/internal/server/sse"
	ws "github.com/agentstation/pagecast/internal/server/websocket"
	"github.com/agentstation/pagecast/pkg/cms"
	"github.com/agentstation/pagecast/pkg/logging"
)

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws.
// Each client replays the full history and then follows live pushes.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.baseCtx, uuid.NewString(), h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	client.Send(ws.NewMessage(ws.TypeConnected, map[string]any{
		"client_id": client.ID(),
		"history":   h.client.State().Len(),
	}))
	go client.Feed(h.client.CMS().Updates(client.Context()))
}

// HandleUpdatesStream handles GET /api/v1/updates/stream. Every broadcast
// value is sent with its sequence number as the event id.
func (h *Handlers) HandleUpdatesStream(w http.ResponseWriter, r *http.Request) {
	stream, err := sse.NewStream(w)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	log := logging.FromContext(r.Context())

	if err := stream.Send(sse.Event{Event: sse.EventConnected, Data: map[string]any{
		"history": h.client.State().Len(),
	}}); err != nil {
		return
	}

	for v := range h.client.CMS().Updates(r.Context()) {
		event := sse.EventPage
		if v.IsCollection() {
			event = sse.EventPages
		}
		if err := stream.Send(sse.Event{
			Event: event,
			Data:  v.Payload(),
			ID:    strconv.FormatUint(v.Seq, 10),
		}); err != nil {
			log.Debug().Err(err).Msg("SSE client went away")
			return
		}
	}
}

// HandleStreamPage handles GET /api/v1/pages/{type}/stream. The optional
// field and value query parameters filter the stream; the value is parsed
// into the type the field holds before comparing.
func (h *Handlers) HandleStreamPage(w http.ResponseWriter, r *http.Request) {
	t, err := pageType(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var filter *cms.Filter
	if key := r.URL.Query().Get("field"); key != "" {
		filter = cms.WhereText(key, r.URL.Query().Get("value"))
	}

	stream, err := sse.NewStream(w)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := stream.Send(sse.Event{Event: sse.EventConnected, Data: map[string]string{
		"data_type": t.String(),
		"filter":    filter.String(),
	}}); err != nil {
		return
	}

	for p := range h.client.CMS().StreamPage(r.Context(), t, filter) {
		if err := stream.Send(sse.Event{Event: sse.EventPage, Data: p}); err != nil {
			logging.FromContext(r.Context()).Debug().Err(err).Msg("SSE client went away")
			return
		}
	}
}

// HandleStreamPages handles GET /api/v1/pages/{type}/list/stream.
func (h *Handlers) HandleStreamPages(w http.ResponseWriter, r *http.Request) {
	t, err := pageType(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	stream, err := sse.NewStream(w)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := stream.Send(sse.Event{Event: sse.EventConnected, Data: map[string]string{
		"data_type": t.String(),
	}}); err != nil {
		return
	}

	for ps := range h.client.CMS().StreamPages(r.Context(), t) {
		if err := stream.Send(sse.Event{Event: sse.EventPages, Data: ps}); err != nil {
			logging.FromContext(r.Context()).Debug().Err(err).Msg("SSE client went away")
			return
		}
	}
}
