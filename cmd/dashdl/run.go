package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/handiism/dash-downloader/internal/config"
	"github.com/handiism/dash-downloader/internal/download"
	dlhttp "github.com/handiism/dash-downloader/internal/http"
	ioutils "github.com/handiism/dash-downloader/internal/io"
	"github.com/handiism/dash-downloader/internal/merge"
	"github.com/handiism/dash-downloader/internal/metrics"
	"github.com/handiism/dash-downloader/internal/progress"
	"github.com/handiism/dash-downloader/internal/resolve"
	"github.com/handiism/dash-downloader/internal/tui"
)

// frontend is where a run reports to: a progress sink, status and state
// callbacks, and an optional overwrite confirmer.
type frontend struct {
	sink      progress.Sink
	onStatus  func(download.StatusEvent)
	onState   func(download.ItemUpdate)
	confirmer download.Confirmer
}

func downloadAction(c *cli.Context) error {
	if c.NArg() != 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("", exitUsage)
	}

	settings, err := loadSettings(c)
	if err != nil {
		if errors.Is(err, config.ErrPolicyViolation) {
			return cli.Exit(err.Error(), exitUsage)
		}
		return cli.Exit(err.Error(), 1)
	}

	useTUI := !c.Bool("plain") && isatty.IsTerminal(os.Stdout.Fd())
	log, closeLog, err := newLogger(settings, useTUI)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ioutils.RequireDir(settings.WorkDir); err != nil {
		return cli.Exit(fmt.Sprintf("Error: work directory: %v", err), 1)
	}

	ffmpeg := &merge.FFmpeg{Path: settings.FFmpegPath, Logger: log}
	version, err := ffmpeg.Probe(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s is not usable, install ffmpeg or set --ffmpeg: %v", settings.FFmpegPath, err), 1)
	}
	log.WithField("ffmpeg", version).Debug("merge tool found")

	client := dlhttp.NewClient(dlhttp.Config{
		UserAgent:     settings.UserAgent,
		Cookie:        settings.Cookie,
		Referer:       settings.Referer,
		HeaderTimeout: settings.HeaderTimeout(),
	})

	identifier := c.Args().First()
	coll, err := resolve.NewManifestResolver(client).ResolveCollection(ctx, identifier)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	log.WithFields(logrus.Fields{"identifier": identifier, "items": len(coll.Items)}).Info("resolved")

	rec := metrics.New()
	if settings.MetricsFile != "" {
		defer func() {
			if err := rec.WriteTextfile(settings.MetricsFile); err != nil {
				log.WithError(err).Warn("could not write metrics")
			}
		}()
	}

	var report download.BatchReport
	work := func(fe frontend) {
		agg := progress.New(fe.sink)
		defer agg.Close()

		manager := download.NewManager(settings, download.Deps{
			Client:    client,
			Progress:  agg,
			Muxer:     ffmpeg,
			Confirmer: fe.confirmer,
			Logger:    log,
			Metrics:   rec,
			OnState:   fe.onState,
		}, fe.onStatus)
		report = manager.RunBatch(ctx, coll)
	}

	if useTUI {
		ui := tui.New(tui.Options{Verbose: c.Bool("verbose"), Cancel: stop})
		err = ui.Run(func() error {
			work(frontend{sink: ui, onStatus: ui.Status, onState: ui.OnState, confirmer: ui})
			return nil
		})
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		printSummary(newPrinter(os.Stdout, false), report)
	} else {
		printer := newPrinter(os.Stdout, c.Bool("verbose"))
		fe := frontend{sink: progress.NewLogSink(log), onStatus: printer.Status}
		if settings.OverwriteMode == config.OverwriteAsk && isatty.IsTerminal(os.Stdin.Fd()) {
			fe.confirmer = newPrompt(os.Stdin, os.Stdout)
		}
		work(fe)
	}

	if ctx.Err() != nil && c.Context.Err() == nil {
		return cli.Exit("Interrupted. Partial downloads are kept and resume on the next run.", exitInterrupted)
	}
	if code := report.Status().ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// printSummary repeats failures after the TUI has left the screen.
func printSummary(p *printer, report download.BatchReport) {
	for _, item := range report.Items {
		if !item.Outcome.Success() {
			p.Status(download.StatusEvent{Message: fmt.Sprintf("%s: %v", item.Title, item.Err), Level: download.LevelError})
		}
	}
	succeeded, failed := report.Counts()
	level := download.LevelSuccess
	if failed > 0 {
		level = download.LevelWarning
	}
	p.Status(download.StatusEvent{
		Message: fmt.Sprintf("%d succeeded, %d failed (%s)", succeeded, failed, report.Status()),
		Level:   level,
	})
}

func configInitAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = config.DefaultPath()
	}
	if ioutils.FileExists(path) {
		return cli.Exit(fmt.Sprintf("Error: %s already exists", path), 1)
	}
	if err := config.DefaultSettings().Save(path); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	fmt.Println(path)
	return nil
}

func configShowAction(c *cli.Context) error {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if err := config.LoadEnv(settings, ".env"); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", data)
	return nil
}
