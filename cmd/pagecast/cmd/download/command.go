// Package download provides commands that race repositories for pages.
package download

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/pagecast"
	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/internal/cmd/output"
	"github.com/agentstation/pagecast/pkg/cms"
	"github.com/agentstation/pagecast/pkg/downloader"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
)

// NewCommand creates the download command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "download [resource]",
		Aliases: []string{"dl"},
		GroupID: "core",
		Short:   "Download pages by racing registered repositories",
		Long: `Download races every repository registered for a page type and prints
the winning value. The first repository to settle wins unless the policy
is first-success.`,
		Example: `  pagecast download page article 42
  pagecast download page article 1 2 3 --format table
  pagecast download pages article --policy first-success`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown resource: %s", args[0])
		},
	}

	cmd.AddCommand(newPageCommand(app))
	cmd.AddCommand(newPagesCommand(app))
	return cmd
}

func newPageCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "page <type> <id>...",
		Short: "Download single pages by id",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pages.TypeFromString(args[0])
			if err != nil {
				return errors.NewValidationError("type", args[0], err.Error())
			}
			ids := args[1:]

			client, err := app.Client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), app)
			defer cancel()

			ps, err := downloadPages(ctx, client, t, ids)
			if err != nil {
				return err
			}
			return output.WritePages(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), ps)
		},
	}
}

func newPagesCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "pages <type>",
		Short: "Download the collection for a page type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pages.TypeFromString(args[0])
			if err != nil {
				return errors.NewValidationError("type", args[0], err.Error())
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), app)
			defer cancel()

			v, err := client.DownloadPagesValue(ctx, t)
			if err != nil {
				return err
			}
			ps, _ := v.Pages()
			return output.WritePages(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), ps)
		},
	}
}

// downloadPages runs one download, or a bounded batch for several ids, and
// returns the downloaded pages in argument order.
func downloadPages(ctx context.Context, client pagecast.Client, t pages.Type, ids []string) ([]pages.Page, error) {
	if len(ids) == 1 {
		v, err := client.DownloadPageValue(ctx, t, ids[0])
		if err != nil {
			return nil, err
		}
		p, _ := v.Page()
		return []pages.Page{p}, nil
	}
	reqs := make([]downloader.Request[string], len(ids))
	for i, id := range ids {
		reqs[i] = downloader.PageRequest(t, id)
	}
	if err := client.DownloadAll(ctx, reqs); err != nil {
		return nil, err
	}
	return latestSingles(client, t, ids), nil
}

// latestSingles returns the most recent single page of type t for each id,
// in argument order.
func latestSingles(client pagecast.Client, t pages.Type, ids []string) []pages.Page {
	history := client.State().History()
	ps := make([]pages.Page, 0, len(ids))
	for _, id := range ids {
		match := cms.WhereText("id", id)
		for i := len(history) - 1; i >= 0; i-- {
			p, ok := history[i].Page()
			if ok && pages.Is(p, t) && match.Matches(p) {
				ps = append(ps, p)
				break
			}
		}
	}
	return ps
}

func withTimeout(ctx context.Context, app application.Application) (context.Context, context.CancelFunc) {
	if d := app.Timeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
