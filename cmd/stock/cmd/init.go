/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockdb/pkg/config"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a configuration file with default settings and a freshly generated
API key.

Examples:
  stock init
  stock init --data-file /srv/stock/inventory.dat --force`,
		Args: cobra.NoArgs,
		// init runs before any configuration exists, so it opens no store
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}
			dataFile, _ := cmd.Flags().GetString("data-file")
			force, _ := cmd.Flags().GetBool("force")

			out := cmd.OutOrStdout()
			if config.ConfigExists(configPath) && !force {
				fmt.Fprintf(out, "Config already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, dataFile)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Config written to %s\n", configPath)
			fmt.Fprintf(out, "Data file: %s\n", cfg.DataFile)
			fmt.Fprintf(out, "Report file: %s\n", cfg.ReportFile)
			fmt.Fprintf(out, "API key: %s\n", cfg.Server.APIKey)
			return nil
		},
	}

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return initCmd
}
