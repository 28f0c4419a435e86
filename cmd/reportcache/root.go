// reportcache serves listings, statistics, insights, and exports over the
// operational CSV reports kept in a data directory.
//
// Usage:
//
//	reportcache datasets
//	reportcache query nncc --filter zona=NORTE --search maipu --page 2
//	reportcache stats corte --filter mes=3 --filter anio=2025
//	reportcache export teleco --out teleco.csv
//	reportcache export nncc --sink postgres --dsn postgresql://... --table public.nncc
//	reportcache summary
//	reportcache validate --config reportcache.yaml
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"reportcache/internal/cache"
	"reportcache/internal/catalog"
	"reportcache/internal/config"
	"reportcache/internal/engine"
	"reportcache/internal/metrics"
	"reportcache/internal/metrics/datadog"
	"reportcache/internal/metrics/prompush"

	// register every export sink with the storage factory.
	_ "reportcache/internal/storage/all"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config         string
	dataDir        string
	verbose        bool
	metricsBackend string
	pushgatewayURL string
}

// app is the state built once per invocation by the root pre-run hook.
var app struct {
	cfg    config.App
	log    *zap.Logger
	engine *engine.Engine
	closer func() error
}

var rootCmd = &cobra.Command{
	Use:   "reportcache",
	Short: "Cached reporting over operational CSV datasets",
	Long: "reportcache normalizes the nncc, calidad, lecturas, corte and teleco reports\n" +
		"into in-memory datasets and answers queries, statistics and exports over them.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.config, "config", "", "config file (YAML, or JSON by extension)")
	f.StringVar(&rootFlags.dataDir, "data-dir", "", "directory holding the source files (overrides config and "+config.EnvDataDir+")")
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logs")
	f.StringVar(&rootFlags.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog")
	f.StringVar(&rootFlags.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides "+config.EnvPushgatewayURL+")")

	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(valuesCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: file, then environment, then flags.
func loadConfig() (config.App, error) {
	cfg, err := config.Load(rootFlags.config)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if rootFlags.metricsBackend != "" {
		cfg.Metrics.Backend = rootFlags.metricsBackend
	}
	if rootFlags.pushgatewayURL != "" {
		cfg.Metrics.PushgatewayURL = rootFlags.pushgatewayURL
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}
	if rootFlags.verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// setupMetrics installs the configured backend and returns its closer.
// A backend that fails to initialize leaves metrics disabled.
func setupMetrics(m config.Metrics, log *zap.Logger) func() error {
	switch strings.ToLower(m.Backend) {
	case config.BackendPushgateway:
		b, err := prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err != nil {
			log.Warn("metrics: pushgateway backend unavailable; using nop", zap.Error(err))
			return nil
		}
		log.Debug("metrics enabled",
			zap.String("backend", m.Backend),
			zap.String("url", m.PushgatewayURL),
			zap.String("job", m.Job),
		)
		metrics.SetBackend(b)
		return metrics.Flush
	case config.BackendDatadog:
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.Datadog.Addr,
			Namespace:  m.Datadog.Namespace,
			GlobalTags: m.Datadog.Tags,
		})
		if err != nil {
			log.Warn("metrics: datadog backend unavailable; using nop", zap.Error(err))
			return nil
		}
		metrics.SetBackend(b)
		return func() error {
			if err := metrics.Flush(); err != nil {
				return err
			}
			return b.Close()
		}
	case "", config.BackendNone:
		log.Debug("metrics disabled")
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", m.Backend))
	}
	return nil
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	app.cfg = cfg
	app.log = log

	// validate inspects the configuration without opening the data directory.
	if cmd == validateCmd {
		return nil
	}

	app.closer = setupMetrics(cfg.Metrics, log)

	store, err := cache.New(cfg.DataDir, catalog.Default(), cache.WithLogger(log))
	if err != nil {
		return err
	}
	eng, err := engine.New(store,
		engine.WithLogger(log),
		engine.WithThresholds(cfg.Thresholds),
		engine.WithWindows(cfg.Windows),
	)
	if err != nil {
		return err
	}
	app.engine = eng
	return nil
}

func teardown(*cobra.Command, []string) error {
	if app.closer != nil {
		if err := app.closer(); err != nil {
			app.log.Warn("metrics: flush error", zap.Error(err))
		}
		app.closer = nil
	}
	if app.log != nil {
		_ = app.log.Sync()
	}
	return nil
}
