// Package config provides configuration management for gist-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Overlaying GISTDL_* environment variables, optionally read from a .env file
//   - Conversion to http.Options and logging.Config for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ./gists/{gist id}/
//	// 4 concurrent downloads, 10 gists per run
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/settings.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Environment
//
//	// GISTDL_CONCURRENCY=8 GISTDL_THROTTLE_DELAY=5s
//	err := settings.LoadEnv(".env")
//
// Precedence, lowest first: defaults, file, environment, command-line flags.
//
// # Saving Settings
//
//	settings.OutputDir = "/backup/gists"
//	err := settings.Save("/path/to/settings.json")
package config
