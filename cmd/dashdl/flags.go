package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/handiism/dash-downloader/internal/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "settings file",
		Value:   config.DefaultPath(),
	}
}

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{Name: "workdir", Aliases: []string{"w"}, Usage: "directory for intermediate and output files (must exist)"},
		&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "ask before overwriting an existing output"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"y"}, Usage: "overwrite existing outputs without asking"},
		&cli.StringFlag{Name: "continue", Usage: "resume partial downloads: true or false (default: true unless --overwrite)"},
		&cli.StringFlag{Name: "container", Usage: "output container extension"},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "preferred video quality id (0 = best)"},
		&cli.IntFlag{Name: "audio-quality", Usage: "preferred audio quality id (0 = best)"},
		&cli.BoolFlag{Name: "cover", Usage: "save cover art next to the output"},
		&cli.BoolFlag{Name: "playlist", Usage: "write a playlist for batch downloads"},
		&cli.StringFlag{Name: "playlist-format", Usage: "playlist format: m3u, pls, wpl or zpl"},
		&cli.StringFlag{Name: "ffmpeg", Usage: "ffmpeg executable"},
		&cli.StringFlag{Name: "cookie", Usage: "Cookie header sent with every request"},
		&cli.StringFlag{Name: "user-agent", Usage: "User-Agent header"},
		&cli.StringFlag{Name: "referer", Usage: "Referer header"},
		&cli.StringFlag{Name: "metrics-file", Usage: "write Prometheus metrics to this textfile at exit"},
		&cli.StringFlag{Name: "log-file", Usage: "write diagnostics to this file"},
		&cli.BoolFlag{Name: "plain", Usage: "plain line output even on a terminal"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "show verbose status messages"},
		&cli.BoolFlag{Name: "debug", Usage: "debug diagnostics"},
	}
}

// loadSettings layers defaults < settings file < .env < environment < flags.
func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(settings, ".env"); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := applyFlags(c, settings); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func applyFlags(c *cli.Context, s *config.Settings) error {
	mode, err := config.ResolveOverwriteMode(s.OverwriteMode, c.Bool("overwrite"), c.Bool("interactive"))
	if err != nil {
		return err
	}
	s.OverwriteMode = mode

	if c.IsSet("continue") {
		resume, err := config.ParseContinue(c.String("continue"))
		if err != nil {
			return err
		}
		s.ContinueCache = &resume
	}

	setString := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	setString("workdir", &s.WorkDir)
	setString("container", &s.Container)
	setString("playlist-format", &s.PlaylistFormat)
	setString("ffmpeg", &s.FFmpegPath)
	setString("cookie", &s.Cookie)
	setString("user-agent", &s.UserAgent)
	setString("referer", &s.Referer)
	setString("metrics-file", &s.MetricsFile)
	setString("log-file", &s.LogFile)

	if c.IsSet("quality") {
		s.VideoQuality = c.Int("quality")
	}
	if c.IsSet("audio-quality") {
		s.AudioQuality = c.Int("audio-quality")
	}
	if c.Bool("cover") {
		s.SaveCover = true
	}
	if c.Bool("playlist") {
		s.CreatePlaylist = true
	}
	if c.Bool("debug") {
		s.Debug = true
	}
	return nil
}
