package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// NewRootCmd creates the root command. Without a subcommand it serves the HTTP API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "staffing-service",
		Short:        "Identity, session and appointment API",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if configFile != "" {
				_ = os.Setenv("APP_CONFIG_FILE", configFile)
			}
		},
		RunE: runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides APP_CONFIG_FILE)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}
