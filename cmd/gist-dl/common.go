package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/handiism/gist-downloader/internal/config"
	"github.com/handiism/gist-downloader/internal/download"
	"github.com/handiism/gist-downloader/internal/logging"
	"github.com/handiism/gist-downloader/internal/metrics"
)

// commonFlags are accepted by every command.
type commonFlags struct {
	username    *string
	limit       *int
	configPath  *string
	envFile     *string
	verbose     *bool
	logLevel    *string
	logFormat   *string
	metricsAddr *string
}

func bindCommonFlags(fs *flag.FlagSet) *commonFlags {
	def := config.DefaultSettings()
	return &commonFlags{
		username:    fs.String("username", "", "GitHub username (required)"),
		limit:       fs.Int("limit", def.Limit, "Maximum number of gists, -1 for all"),
		configPath:  fs.String("config", "", "Path to a JSON or YAML settings file"),
		envFile:     fs.String("env-file", ".env", "Optional dotenv file with GISTDL_* variables"),
		verbose:     fs.Bool("verbose", false, "Show verbose output (debug logging)"),
		logLevel:    fs.String("log-level", def.LogLevel, "Log level: debug, info, warn, error"),
		logFormat:   fs.String("log-format", def.LogFormat, "Log format: console or json"),
		metricsAddr: fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090"),
	}
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// loadSettings applies defaults, the settings file, the environment and the
// explicitly set flags, in that order.
func (c *commonFlags) loadSettings(set map[string]bool) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if *c.configPath != "" {
		var err error
		settings, err = config.Load(*c.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if err := settings.LoadEnv(*c.envFile); err != nil {
		return nil, err
	}

	if set["limit"] {
		settings.Limit = *c.limit
	}
	if set["log-level"] {
		settings.LogLevel = *c.logLevel
	}
	if set["log-format"] {
		settings.LogFormat = *c.logFormat
	}
	if set["metrics-addr"] {
		settings.MetricsAddr = *c.metricsAddr
	}
	if *c.verbose {
		settings.LogLevel = "debug"
	}

	return settings, nil
}

// env carries what a command needs once flags are processed.
type env struct {
	settings *config.Settings
	logger   *zap.Logger
	metrics  *metrics.Metrics
	ctx      context.Context
	cleanup  func()
}

func setup(settings *config.Settings, stderr io.Writer) (*env, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.ToLoggingConfig())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	mt := metrics.New(reg)
	stopMetrics := func() {}
	if settings.MetricsAddr != "" {
		stopMetrics = serveMetrics(settings.MetricsAddr, reg, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if _, ok := <-sigCh; ok {
			fmt.Fprintln(stderr, "\nInterrupted, cancelling...")
			cancel()
		}
	}()

	return &env{
		settings: settings,
		logger:   logger,
		metrics:  mt,
		ctx:      ctx,
		cleanup: func() {
			signal.Stop(sigCh)
			close(sigCh)
			cancel()
			stopMetrics()
			_ = logger.Sync()
		},
	}, nil
}

// newReporter maps progress events onto log levels.
func newReporter(logger *zap.Logger) func(download.ProgressEvent) {
	return func(e download.ProgressEvent) {
		var fields []zap.Field
		if e.GistID != "" {
			fields = append(fields, zap.String("gist_id", e.GistID))
		}

		switch e.Level {
		case download.LevelVerbose:
			logger.Debug(e.Message, fields...)
		case download.LevelWarning:
			logger.Warn(e.Message, fields...)
		case download.LevelError:
			logger.Error(e.Message, fields...)
		default:
			logger.Info(e.Message, fields...)
		}
	}
}
