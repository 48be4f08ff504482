/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	logging "github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/ssargent/stockdb/pkg/config"
	applog "github.com/ssargent/stockdb/pkg/logging"
	"github.com/ssargent/stockdb/pkg/store"
)

var log = logging.MustGetLogger("cmd")

type contextKey string

const appKey contextKey = "app"

// app is the state shared by every subcommand of one invocation
type app struct {
	config  *config.Config
	store   *store.RecordStore
	logFile *os.File
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey).(*app)
	if !ok || a.store == nil {
		return nil, errors.New("store not found in context")
	}
	return a, nil
}

// loadConfig resolves the configuration file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	switch {
	case config.ConfigExists(configPath):
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case explicit:
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if cmd.Flags().Changed("data-file") {
		cfg.DataFile, _ = cmd.Flags().GetString("data-file")
		cfg.TempFile = ""
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration, sets up logging and opens the store
func openApp(cmd *cobra.Command, a *app) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a.config = cfg

	a.logFile, err = applog.Configure(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	a.store, err = store.OpenOrCreate(store.StoreConfig{
		Path:     cfg.DataFile,
		TempPath: cfg.TempFilePath(),
		NoSync:   cfg.NoSync,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	log.Debugf("opened %s", cfg.DataFile)
	return nil
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock - fixed-record product inventory",
		Long: `Stock keeps a product inventory in a single binary file of fixed-size
records. Records are addressed by their position in the file.

Running stock without a subcommand starts the interactive menu.

Examples:
  stock add "cordless drill" 501 149.90
  stock list --format json
  stock delete 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := openApp(cmd, a); err != nil {
				_ = a.close()
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: runMenu,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ~/.config/stock/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-file", "f", "", "Data file, overrides the config")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: critical, error, warning, notice, info or debug")

	rootCmd.AddCommand(
		newAddCmd(),
		newGetCmd(),
		newCountCmd(),
		newListCmd(),
		newDeleteCmd(),
		newReportCmd(),
		newCheckCmd(),
		newRepairCmd(),
		newMenuCmd(),
		newServeCmd(),
		newInitCmd(),
	)

	return rootCmd, a
}

// execute runs root and closes the app afterwards. The post-run hook is
// skipped when a command fails, so the store is closed here as well.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	root, a := newRootCmd()
	if err := execute(context.Background(), root, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
