package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/handiism/dash-downloader/internal/config"
	"github.com/handiism/dash-downloader/internal/download"
)

// newLogger builds the diagnostics logger. Every entry carries the run ID.
// In TUI mode diagnostics never go to the terminal.
func newLogger(settings *config.Settings, useTUI bool) (logrus.FieldLogger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if settings.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	closer := func() {}
	switch {
	case settings.LogFile != "":
		f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		closer = func() { f.Close() }
	case useTUI:
		logger.SetOutput(io.Discard)
	default:
		logger.SetOutput(os.Stderr)
	}

	return logger.WithField("run_id", uuid.NewString()), closer, nil
}

// printer writes status events as prefixed lines.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

func newPrinter(out io.Writer, verbose bool) *printer {
	return &printer{out: out, verbose: verbose}
}

func (p *printer) Status(event download.StatusEvent) {
	if event.Level == download.LevelVerbose && !p.verbose {
		return
	}

	prefix := ""
	switch event.Level {
	case download.LevelError:
		prefix = "[error] "
	case download.LevelWarning:
		prefix = "[warn]  "
	case download.LevelSuccess:
		prefix = "[ok]    "
	case download.LevelInfo:
		prefix = "[info]  "
	default:
		prefix = "        "
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, prefix+event.Message)
}

// prompt asks overwrite questions on a line-oriented terminal.
type prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompt(in io.Reader, out io.Writer) *prompt {
	return &prompt{in: bufio.NewReader(in), out: out}
}

// Confirm implements download.Confirmer. Anything but y/yes declines.
func (p *prompt) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", question)

	answer := make(chan string, 1)
	go func() {
		line, _ := p.in.ReadString('\n')
		answer <- line
	}()

	select {
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
