package commands

import (
	"github.com/spf13/cobra"

	"bizdash/internal/buildinfo"
	"bizdash/internal/cli"
	"bizdash/internal/config"
	applog "bizdash/internal/log"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:     "bizdash",
		Short:   "Service catalog and revenue dashboard",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.LoadEnvFile(envFiles...)
		},
	}

	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newImportCommand(),
		newStatsCommand(),
	)

	return rootCmd
}

// setup loads and validates the configuration and installs the process
// logger for component.
func setup(component string) (*config.Config, *applog.Logger, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(component, cfg.SlogLevel()), nil
}
