package cms

import (
	"context"
	"fmt"

	"github.com/agentstation/pagecast/pkg/pages"
)

// StreamPageAs is StreamPage narrowed to pages whose Go type is U. Pages
// tagged t that are not a U are skipped.
func StreamPageAs[U pages.Page](ctx context.Context, c *CMS, t pages.Type, f *Filter) <-chan U {
	out := make(chan U)
	go func() {
		defer close(out)
		for p := range c.StreamPage(ctx, t, f) {
			u, ok := p.(U)
			if !ok {
				continue
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// PageAs returns the first page StreamPageAs would emit.
func PageAs[U pages.Page](ctx context.Context, c *CMS, t pages.Type, f *Filter) (U, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	u, ok := <-StreamPageAs[U](ctx, c, t, f)
	if !ok {
		var zero U
		return zero, c.endOfStream(ctx, fmt.Sprintf("page %s where %s", t, f))
	}
	return u, nil
}

// PagesAs returns the first collection tagged t whose elements are all a U.
func PagesAs[U pages.Page](ctx context.Context, c *CMS, t pages.Type) ([]U, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for ps := range c.StreamPages(ctx, t) {
		if us, ok := convert[U](ps); ok {
			return us, nil
		}
	}
	return nil, c.endOfStream(ctx, fmt.Sprintf("pages %s", t))
}

func convert[U pages.Page](ps []pages.Page) ([]U, bool) {
	out := make([]U, 0, len(ps))
	for _, p := range ps {
		u, ok := p.(U)
		if !ok {
			return nil, false
		}
		out = append(out, u)
	}
	return out, true
}
