// Package watch provides the command that streams pages as they are
// broadcast.
package watch

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/pagecast"
	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/internal/cmd/output"
	"github.com/agentstation/pagecast/pkg/cms"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
)

// Flags holds flags for the watch command.
type Flags struct {
	Field    string
	Value    string
	List     bool
	Count    int
	Download []string
}

// NewCommand creates the watch command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "watch <type>",
		GroupID: "core",
		Short:   "Stream pages of a type as they are downloaded",
		Long: `Watch subscribes to the broadcast state and prints every page of the
given type as it arrives. Use --download to trigger downloads in the
background, and --count to stop after a number of pages.`,
		Example: `  pagecast watch article --download 1 --download 2 --count 2
  pagecast watch article --field author --value ada --download 7
  pagecast watch article --list --download ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pages.TypeFromString(args[0])
			if err != nil {
				return errors.NewValidationError("type", args[0], err.Error())
			}
			if flags.Count < 0 {
				return errors.NewValidationError("count", flags.Count, "must not be negative")
			}
			if (flags.Field == "") != (flags.Value == "") {
				return errors.NewValidationError("field", flags.Field, "--field and --value must be set together")
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), app, client, t, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Field, "field", "", "Only print pages whose field equals --value")
	cmd.Flags().StringVar(&flags.Value, "value", "", "Value compared against --field")
	cmd.Flags().BoolVar(&flags.List, "list", false, "Stream collections instead of single pages")
	cmd.Flags().IntVarP(&flags.Count, "count", "n", 0, "Stop after this many results (0 streams until interrupted)")
	cmd.Flags().StringArrayVar(&flags.Download, "download", nil, "Download this id in the background (repeatable; with --list any value downloads the collection)")

	return cmd
}

func run(ctx context.Context, w io.Writer, app application.Application, client pagecast.Client, t pages.Type, flags *Flags) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	format := output.DetectFormat(app.OutputFormat())
	logger := app.Logger()

	// Subscribe before downloading so nothing pushed is missed.
	var (
		singles     <-chan pages.Page
		collections <-chan []pages.Page
	)
	if flags.List {
		collections = client.CMS().StreamPages(ctx, t)
	} else {
		var filter *cms.Filter
		if flags.Field != "" {
			filter = cms.WhereText(flags.Field, flags.Value)
		}
		singles = client.CMS().StreamPage(ctx, t, filter)
	}

	startDownloads(ctx, app, client, t, flags)

	seen := 0
	for {
		var ps []pages.Page
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-singles:
			if !ok {
				return nil
			}
			ps = []pages.Page{p}
		case c, ok := <-collections:
			if !ok {
				return nil
			}
			ps = c
		}

		if err := output.WritePages(w, format, ps); err != nil {
			return err
		}
		seen++
		logger.Debug().Str("data_type", t.String()).Int("seen", seen).Msg("Page received")
		if flags.Count > 0 && seen >= flags.Count {
			return nil
		}
	}
}

// startDownloads fires the requested downloads without waiting for them.
// Failures are logged; the stream keeps running.
func startDownloads(ctx context.Context, app application.Application, client pagecast.Client, t pages.Type, flags *Flags) {
	if len(flags.Download) == 0 {
		return
	}
	logger := app.Logger()

	download := func(ctx context.Context, id string) error {
		if flags.List {
			return client.DownloadPages(ctx, t)
		}
		return client.DownloadPage(ctx, t, id)
	}

	ids := flags.Download
	if flags.List {
		ids = ids[:1]
	}
	for _, id := range ids {
		go func() {
			dctx := ctx
			if d := app.Timeout(); d > 0 {
				var cancel context.CancelFunc
				dctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
			if err := download(dctx, id); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Str("data_type", t.String()).Str("id", id).Msg("Download failed")
			}
		}()
	}
}
