package handlers

import (
	"context"
	"net/http"

	"github.com/agentstation/pagecast/internal/server/response"
	ws "github.com/agentstation/pagecast/internal/server/websocket"
	"github.com/agentstation/pagecast/pkg/cms"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
)

// PageResult is returned after a single page download.
type PageResult struct {
	DataType string     `json:"data_type"`
	ID       string     `json:"id"`
	Seq      uint64     `json:"seq"`
	Page     pages.Page `json:"page"`
}

// PagesResult is returned after a collection download.
type PagesResult struct {
	DataType string       `json:"data_type"`
	Seq      uint64       `json:"seq"`
	Count    int          `json:"count"`
	Pages    []pages.Page `json:"pages"`
}

// HandleDownloadPage handles POST /api/v1/pages/{type}/{id}.
func (h *Handlers) HandleDownloadPage(w http.ResponseWriter, r *http.Request) {
	t, err := pageType(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := r.PathValue("id")

	ctx, cancel := h.downloadContext(r.Context())
	defer cancel()

	v, err := h.client.DownloadPageValue(ctx, t, id)
	if err != nil {
		h.notifyFailure(t, id, err)
		h.fail(w, r, err)
		return
	}

	result := PageResult{DataType: t.String(), ID: id, Seq: v.Seq}
	result.Page, _ = v.Page()
	response.OK(w, result)
}

// HandleDownloadPages handles POST /api/v1/pages/{type}.
func (h *Handlers) HandleDownloadPages(w http.ResponseWriter, r *http.Request) {
	t, err := pageType(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.downloadContext(r.Context())
	defer cancel()

	v, err := h.client.DownloadPagesValue(ctx, t)
	if err != nil {
		h.notifyFailure(t, "", err)
		h.fail(w, r, err)
		return
	}

	result := PagesResult{DataType: t.String(), Seq: v.Seq, Pages: []pages.Page{}}
	if ps, ok := v.Pages(); ok && ps != nil {
		result.Pages = ps
	}
	result.Count = len(result.Pages)
	response.OK(w, result)
}

// HandleGetPage handles GET /api/v1/pages/{type}/{id}. It returns the first
// page of the type whose field (default "id") equals the path id, waiting up
// to the wait query parameter for one to arrive.
func (h *Handlers) HandleGetPage(w http.ResponseWriter, r *http.Request) {
	t, err := pageType(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	wait, err := waitFor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	key := r.URL.Query().Get("field")
	if key == "" {
		key = "id"
	}

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()

	p, err := h.client.CMS().Page(ctx, t, cms.WhereText(key, r.PathValue("id")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, p)
}

// HandleListPages handles GET /api/v1/pages/{type}. It returns the first
// collection of the type, waiting up to the wait query parameter.
func (h *Handlers) HandleListPages(w http.ResponseWriter, r *http.Request) {
	t, err := pageType(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	wait, err := waitFor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()

	ps, err := h.client.CMS().Pages(ctx, t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, PagesResult{DataType: t.String(), Count: len(ps), Pages: ps})
}

// HandleRegistrations handles GET /api/v1/registrations.
func (h *Handlers) HandleRegistrations(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, registration.Describe(h.client.Registrations()))
}

func (h *Handlers) downloadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.downloadTimeout > 0 {
		return context.WithTimeout(ctx, h.downloadTimeout)
	}
	return context.WithCancel(ctx)
}

// notifyFailure tells WebSocket clients about a failed download.
func (h *Handlers) notifyFailure(t pages.Type, id string, err error) {
	if h.hub == nil {
		return
	}
	data := map[string]string{
		"data_type": t.String(),
		"error":     err.Error(),
	}
	if id != "" {
		data["id"] = id
	}
	h.hub.Broadcast(ws.NewMessage(ws.TypeDownloadFailed, data))
}
