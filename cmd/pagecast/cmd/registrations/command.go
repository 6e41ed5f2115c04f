// Package registrations provides the command that lists registered
// repositories.
package registrations

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/internal/cmd/output"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
)

// NewCommand creates the registrations command.
func NewCommand(app application.Application) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:     "registrations",
		Aliases: []string{"regs"},
		GroupID: "management",
		Short:   "List registered repositories",
		Long: `List the repositories registered for each page type, in the order the
registration file declares them.`,
		Example: `  pagecast registrations
  pagecast registrations --type article -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			regs := client.Registrations()
			if typeFilter != "" {
				t, err := pages.TypeFromString(typeFilter)
				if err != nil {
					return err
				}
				regs = filterByType(regs, t)
			}

			format := output.DetectFormat(app.OutputFormat())
			formatter := output.NewFormatter(format)
			switch format {
			case output.FormatTable, output.FormatWide:
				return formatter.Format(cmd.OutOrStdout(), output.RegistrationsToTableData(regs))
			default:
				return formatter.Format(cmd.OutOrStdout(), registration.Describe(regs))
			}
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Only list registrations for this page type")
	return cmd
}

func filterByType(regs []registration.Registration, t pages.Type) []registration.Registration {
	out := make([]registration.Registration, 0, len(regs))
	for _, r := range regs {
		if r.DataType() == t {
			out = append(out, r)
		}
	}
	return out
}
