// Package config provides configuration management for dash-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Environment overrides (DASHDL_*), including a .env file
//   - The overwrite and resume policies shared by every session
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Outputs land in the current directory as .mp4
//	// Existing outputs are skipped, partial downloads are resumed
//
// # Loading
//
// Sources are layered: defaults, then the JSON file, then the environment.
// Command-line flags are applied by the caller last.
//
//	settings, err := config.Load(config.DefaultPath())
//	if err := config.LoadEnv(settings, ".env"); err != nil {
//	    // malformed environment value
//	}
//
// # Policies
//
// Policy freezes the overwrite mode and resume flag once the settings are
// final. It is passed by value into the download and merge components and
// never read from global state.
//
//	policy := settings.Policy()
//	policy.Resume // false when overwrite mode is "overwrite", unless set explicitly
package config
