package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. DASHDL_WORK_DIR.
const EnvPrefix = "DASHDL"

// DefaultProgressInterval is the number of bytes coalesced into one progress update.
const DefaultProgressInterval = 1 << 20

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	WorkDir   string `json:"work_dir" envconfig:"WORK_DIR"`
	Container string `json:"container" envconfig:"CONTAINER"`

	// Policies
	OverwriteMode OverwriteMode `json:"overwrite_mode" envconfig:"OVERWRITE_MODE"`
	ContinueCache *bool         `json:"continue_cache,omitempty" envconfig:"CONTINUE"`

	// Stream selection (0 = best available)
	VideoQuality int `json:"video_quality" envconfig:"VIDEO_QUALITY"`
	AudioQuality int `json:"audio_quality" envconfig:"AUDIO_QUALITY"`

	// External tools
	FFmpegPath string `json:"ffmpeg_path" envconfig:"FFMPEG"`

	// HTTP settings
	UserAgent            string `json:"user_agent" envconfig:"USER_AGENT"`
	Cookie               string `json:"cookie,omitempty" envconfig:"COOKIE"`
	Referer              string `json:"referer" envconfig:"REFERER"`
	HeaderTimeoutSeconds int    `json:"header_timeout_seconds" envconfig:"HEADER_TIMEOUT"`
	ProgressInterval     int64  `json:"progress_interval_bytes" envconfig:"PROGRESS_INTERVAL"`

	// Cover art settings
	SaveCover    bool `json:"save_cover" envconfig:"SAVE_COVER"`
	CoverMaxSize int  `json:"cover_max_size" envconfig:"COVER_MAX_SIZE"`

	// Playlist settings (batch only)
	CreatePlaylist bool   `json:"create_playlist" envconfig:"CREATE_PLAYLIST"`
	PlaylistFormat string `json:"playlist_format" envconfig:"PLAYLIST_FORMAT"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" envconfig:"M3U_EXTENDED"`

	// Diagnostics
	MetricsFile string `json:"metrics_file,omitempty" envconfig:"METRICS_FILE"`
	LogFile     string `json:"log_file,omitempty" envconfig:"LOG_FILE"`
	Debug       bool   `json:"debug" envconfig:"DEBUG"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		WorkDir:   ".",
		Container: "mp4",

		OverwriteMode: OverwriteSkip,

		FFmpegPath: "ffmpeg",

		UserAgent:            "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		HeaderTimeoutSeconds: 30,
		ProgressInterval:     DefaultProgressInterval,

		SaveCover:    false,
		CoverMaxSize: 1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// DefaultPath returns the settings file location under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(dir, "dashdl", "settings.json")
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// LoadEnv applies environment overrides to s. Each dotenv file is loaded
// first if present; variables already set in the environment win over the file.
func LoadEnv(s *Settings, dotenvFiles ...string) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return envconfig.Process(EnvPrefix, s)
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Resume reports whether existing intermediate files are resumed.
// An explicit ContinueCache wins; otherwise it follows the overwrite mode.
func (s *Settings) Resume() bool {
	if s.ContinueCache != nil {
		return *s.ContinueCache
	}
	return DefaultResume(s.OverwriteMode)
}

// Policy freezes the overwrite mode and resume flag.
func (s *Settings) Policy() Policy {
	return Policy{Overwrite: s.OverwriteMode, Resume: s.Resume()}
}

// HeaderTimeout returns the response header timeout, zero meaning none.
func (s *Settings) HeaderTimeout() time.Duration {
	if s.HeaderTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.HeaderTimeoutSeconds) * time.Second
}

// Validate checks the settings for values no component can work with.
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(strings.TrimPrefix(s.Container, ".")) == "" {
		errs = append(errs, errors.New("container must not be empty"))
	}
	if s.OverwriteMode < OverwriteSkip || s.OverwriteMode > OverwriteAsk {
		errs = append(errs, fmt.Errorf("invalid overwrite mode %d", int(s.OverwriteMode)))
	}
	if s.ProgressInterval <= 0 {
		errs = append(errs, errors.New("progress interval must be positive"))
	}
	if s.FFmpegPath == "" {
		errs = append(errs, errors.New("ffmpeg path must not be empty"))
	}
	switch strings.ToLower(s.PlaylistFormat) {
	case "m3u", "pls", "wpl", "zpl":
	default:
		errs = append(errs, fmt.Errorf("unknown playlist format %q", s.PlaylistFormat))
	}
	return errors.Join(errs...)
}
