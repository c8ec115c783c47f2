package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"caliper-hq/dccbridge/pkg/config"
	"caliper-hq/dccbridge/pkg/engine"
	"caliper-hq/dccbridge/pkg/profile/manager"
	"caliper-hq/dccbridge/pkg/profile/parser"
	"caliper-hq/dccbridge/pkg/profile/store"
	"caliper-hq/dccbridge/pkg/server"
	"caliper-hq/dccbridge/pkg/telemetry/logging"
	"caliper-hq/dccbridge/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	profilesDir   string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the conversion server",
	Long: `Start the dccbridge conversion server.

The server loads mapping profiles from the configured directory and
store, exposes the conversion and profile-management API, and reloads
profiles when their files change.

Examples:
  # Start with default config
  dccbridge run

  # Start with custom config
  dccbridge run --config /etc/dccbridge/config.yaml

  # Override listen address and profile directory
  dccbridge run --listen 0.0.0.0:8080 --profiles ./profiles

  # Validate config without starting the server
  dccbridge run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.profilesDir, "profiles", "", "override profile directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

// loadConfig loads the configuration file, or defaults when no file was
// given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.NewDefault(), nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.profilesDir != "" {
		cfg.Profiles.Dir = runFlags.profilesDir
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	// Metrics
	var (
		registry = metrics.NewRegistry()
		conv     *metrics.ConversionMetrics
	)
	if cfg.Telemetry.Metrics.Enabled {
		conv = metrics.NewConversionMetrics(&cfg.Telemetry.Metrics, registry)
	}

	// Profile store
	var profileStore store.Store
	switch cfg.Profiles.Storage.Backend {
	case "sqlite":
		profileStore, err = store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Profiles.Storage.SQLite.Path,
			MaxOpenConns: cfg.Profiles.Storage.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Profiles.Storage.SQLite.MaxIdleConns,
			WALMode:      cfg.Profiles.Storage.SQLite.WALMode,
			BusyTimeout:  cfg.Profiles.Storage.SQLite.BusyTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("opening profile store: %w", err)
		}
	default:
		profileStore = store.NewMemoryStore()
	}
	defer profileStore.Close()

	// Profile manager
	profileParser := parser.NewParser().
		WithRepair(cfg.Profiles.Repair).
		WithMaxFileSize(cfg.Profiles.MaxFileSize).
		WithMaxDepth(cfg.Profiles.MaxDepth)

	var gauge manager.Gauge
	if conv != nil {
		gauge = conv
	}
	profiles, err := manager.New(manager.Config{
		Dir:    cfg.Profiles.Dir,
		Parser: profileParser,
		Store:  profileStore,
		Logger: logger,
		Gauge:  gauge,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := profiles.LoadAll(ctx); err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	// Profile file watcher
	if cfg.Profiles.Watch && cfg.Profiles.Dir != "" {
		watcher, err := manager.NewFileWatcher(&manager.FileWatcherConfig{
			Path:             cfg.Profiles.Dir,
			DebounceInterval: cfg.Profiles.WatchDebounce,
		}, logger)
		if err != nil {
			return fmt.Errorf("creating profile watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, func() error {
				return profiles.LoadAll(context.Background())
			}); err != nil {
				logger.Error("profile watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	// Periodic rescan
	if cfg.Profiles.RescanSchedule != "" {
		rescan, err := manager.NewRescanScheduler(cfg.Profiles.RescanSchedule, logger, profiles.LoadAll)
		if err != nil {
			return err
		}
		rescan.Start()
		defer rescan.Stop()
	}

	// Mapping engine
	var recorder engine.Recorder
	if conv != nil {
		recorder = conv
	}
	mappingEngine := engine.NewMappingEngine(logger, recorder)

	srv, err := server.NewServer(server.Options{
		Config:   cfg,
		Logger:   logger,
		Profiles: profiles,
		Engine:   mappingEngine,
		Metrics:  conv,
		Registry: registry,
	})
	if err != nil {
		return err
	}

	logger.Info("dccbridge starting",
		"version", Version,
		"profiles", profiles.Count(),
		"address", cfg.Server.ListenAddress,
	)

	return srv.Start(ctx)
}
