package downloader

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/pagecast/pkg/pages"
)

// Request is one entry of a batch download.
type Request[S any] struct {
	Type  pages.Type
	ID    S
	Multi bool
}

// PageRequest asks for one page.
func PageRequest[S any](t pages.Type, id S) Request[S] {
	return Request[S]{Type: t, ID: id}
}

// PagesRequest asks for the collection of a page type.
func PagesRequest[S any](t pages.Type) Request[S] {
	return Request[S]{Type: t, Multi: true}
}

// DownloadAll runs every request, at most the batch limit at a time. A
// failing request does not stop the others; their errors are joined in
// request order.
func (d *Downloader[S]) DownloadAll(ctx context.Context, reqs []Request[S]) error {
	errs := make([]error, len(reqs))

	var eg errgroup.Group
	eg.SetLimit(d.opts.batchLimit)
	for i, req := range reqs {
		eg.Go(func() error {
			if req.Multi {
				errs[i] = d.DownloadPages(ctx, req.Type)
			} else {
				errs[i] = d.DownloadPage(ctx, req.Type, req.ID)
			}
			return nil
		})
	}
	_ = eg.Wait()

	return errors.Join(errs...)
}
