package pagecast

import (
	"context"
	"sync"

	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/state"
)

// Hook function types for download events
type (
	// PageDownloadedHook is called after a single page has been pushed.
	PageDownloadedHook func(ctx context.Context, page pages.Page, seq uint64)

	// PagesDownloadedHook is called after a collection has been pushed.
	PagesDownloadedHook func(ctx context.Context, t pages.Type, ps []pages.Page, seq uint64)
)

// hooks manages download callbacks.
type hooks struct {
	mu                sync.RWMutex
	onPageDownloaded  []PageDownloadedHook
	onPagesDownloaded []PagesDownloadedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnPageDownloaded registers a callback for single page downloads.
func (h *hooks) OnPageDownloaded(fn PageDownloadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPageDownloaded = append(h.onPageDownloaded, fn)
}

// OnPagesDownloaded registers a callback for collection downloads.
func (h *hooks) OnPagesDownloaded(fn PagesDownloadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPagesDownloaded = append(h.onPagesDownloaded, fn)
}

// trigger dispatches a pushed value to the matching hooks.
func (h *hooks) trigger(ctx context.Context, t pages.Type, v state.Value) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ps, ok := v.Pages(); ok {
		for _, fn := range h.onPagesDownloaded {
			fn(ctx, t, ps, v.Seq)
		}
		return
	}
	if p, ok := v.Page(); ok {
		for _, fn := range h.onPageDownloaded {
			fn(ctx, p, v.Seq)
		}
	}
}
