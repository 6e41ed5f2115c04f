package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/pagecast/cmd/pagecast/cmd/download"
	"github.com/agentstation/pagecast/cmd/pagecast/cmd/registrations"
	"github.com/agentstation/pagecast/cmd/pagecast/cmd/serve"
	"github.com/agentstation/pagecast/cmd/pagecast/cmd/watch"
	"github.com/agentstation/pagecast/internal/cmd/output"
	"github.com/agentstation/pagecast/pkg/logging"
)

// Execute runs the pagecast CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	flags := &Flags{}

	rootCmd := &cobra.Command{
		Use:     "pagecast",
		Short:   "Race page repositories and stream the results",
		Version: a.version,
		Long: `Pagecast downloads pages by racing every repository registered for a
page type and broadcasts the winning value to readers.

Repositories and page types are declared in a registration file
(default ./pagecast.yaml).`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupCommand(cmd, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.config.ConfigFile, "config", "", "config file (default is ./.pagecast.yaml or $HOME/.pagecast.yaml)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVarP(&flags.Format, "format", "o", "", "output format: table, json, yaml, wide")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVarP(&flags.Registrations, "registrations", "r", DefaultRegistrations, "registration file")
	pf.StringVar(&flags.Policy, "policy", "", "race policy: first-settled or first-success")
	pf.DurationVar(&flags.Timeout, "timeout", DefaultTimeout, "timeout for a single download (0 for none)")

	rootCmd.SetVersionTemplate("pagecast {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, flags *Flags) error {
	if cmd.Flags().Changed("config") {
		cfg, err := loadConfig(viper.New(), a.config.ConfigFile)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	if _, err := output.ParseFormat(flags.Format); err != nil {
		return err
	}
	a.config.UpdateFromFlags(*flags, cmd.Flags().Changed)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(download.NewCommand(a))
	rootCmd.AddCommand(watch.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(registrations.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("pagecast %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// ExitOnError prints an error and exits with status 1. A nil error is a
// no-op.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
