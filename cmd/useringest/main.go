// Command useringest runs the user ingest pipeline: it reads user records
// from a CSV file, drops rows with malformed emails, converts the rest into
// typed records, and appends them to a relational table.
//
// Configuration comes from INGEST_* environment variables, optionally
// preloaded from a .env file. See internal/config for the full list.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"useringest/internal/config"
	"useringest/internal/metrics"
	"useringest/internal/metrics/prompush"
	"useringest/internal/pipeline"
	"useringest/internal/secrets"
	"useringest/internal/storage"

	// register all backends with the storage factory. Config selects which
	// one to use at runtime, so the binary carries support for all of them.
	_ "useringest/internal/storage/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		verbose bool
		log     *zap.Logger
	)

	root := &cobra.Command{
		Use:           "useringest",
		Short:         "Batch-load user records from CSV into a database table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine unless one was named explicitly.
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file %s: %w", envFile, err)
				}
			} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}

			var err error
			if verbose {
				log, err = zap.NewDevelopment()
			} else {
				log, err = zap.NewProduction()
			}
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env if present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&log), newCheckCmd(&log))
	return root
}

func newRunCmd(log **zap.Logger) *cobra.Command {
	var (
		modeFlag  string
		inputFlag string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one ingest run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if inputFlag != "" {
				cfg.InputFile = inputFlag
			}
			if err := reportIssues(cfg, os.Stderr); err != nil {
				return err
			}

			mode, err := storage.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			password, err := resolvePassword(cfg)
			if err != nil {
				(*log).Error("secret resolution failed", zap.Error(err))
				return err
			}

			setupMetrics(*log, cfg)
			defer func() {
				if err := metrics.Flush(); err != nil {
					(*log).Warn("metrics flush failed", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := &pipeline.Runner{
				Log: *log,
				Storage: storage.Config{
					Kind:     cfg.DBKind,
					DSN:      cfg.DSN,
					Table:    cfg.Table,
					User:     cfg.DBUser,
					Password: password,
					Timeout:  cfg.DBTimeout,
				},
				Mode:             mode,
				InputPath:        cfg.InputFile,
				BatchSize:        cfg.BatchSize,
				TransformWorkers: cfg.TransformWorkers,
			}

			sum, err := runner.Run(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ingest failed during %s: %v\n", sum.FailedStage, err)
				return err
			}
			fmt.Printf("loaded %d rows into %s (%d extracted, %d dropped)\n",
				sum.Loaded, cfg.Table, sum.Extracted, sum.Dropped)
			return nil
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", "append", "load mode: append or overwrite")
	cmd.Flags().StringVar(&inputFlag, "input", "", "CSV file to ingest (overrides "+config.EnvInputFile+")")
	return cmd
}

func newCheckCmd(log **zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the environment configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			issues := cfg.Validate()
			for _, iss := range issues {
				fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if err := config.FirstError(issues); err != nil {
				return err
			}
			fmt.Println("configuration is valid")
			return nil
		},
	}
}

// reportIssues prints every configuration issue and returns the first
// error-severity one, if any.
func reportIssues(cfg config.Config, w *os.File) error {
	issues := cfg.Validate()
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.FirstError(issues)
}

// resolvePassword reads the database password from the configured secret
// file. Backends that need no credentials (sqlite) skip this entirely.
func resolvePassword(cfg config.Config) (string, error) {
	if !cfg.NetworkBackend() || cfg.SecretPath == "" {
		return "", nil
	}
	var provider secrets.Provider = secrets.FileProvider{Path: cfg.SecretPath}
	return provider.Secret()
}

// setupMetrics installs the configured metrics backend; the default is the
// package-level nop backend.
func setupMetrics(log *zap.Logger, cfg config.Config) {
	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err := prompush.NewBackend("useringest", cfg.PushgatewayURL)
		if err != nil {
			log.Warn("metrics backend init failed, metrics disabled", zap.Error(err))
			return
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled",
			zap.String("backend", cfg.MetricsBackend),
			zap.String("url", cfg.PushgatewayURL),
		)
	case "", "none":
		// metrics disabled; nop backend remains
	default:
		log.Warn("unknown metrics backend, metrics disabled",
			zap.String("backend", cfg.MetricsBackend))
	}
}
