package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/handiism/gist-downloader/internal/config"
	"github.com/handiism/gist-downloader/internal/logging"
	"github.com/handiism/gist-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to a JSON or YAML settings file (default: user config dir)")
	logFileFlag := flag.String("log-file", "", "Write logs to this file (the terminal is used by the UI)")
	flag.Parse()

	path := *configFlag
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := settings.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *logFileFlag != "" {
		cfg := settings.ToLoggingConfig()
		cfg.OutputPath = *logFileFlag
		logger, err = logging.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
