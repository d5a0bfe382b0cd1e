package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	ioutils "github.com/handiism/dash-downloader/internal/io"
	"github.com/handiism/dash-downloader/internal/metrics"
	"github.com/handiism/dash-downloader/internal/model"
	"github.com/handiism/dash-downloader/internal/progress"
	"github.com/handiism/dash-downloader/internal/transfer"
)

// ErrEmptySession is returned when a session is run without transfers.
var ErrEmptySession = errors.New("session has no transfers")

// SessionError wraps the first transfer failure of a session.
type SessionError struct {
	Label string
	Path  string
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Label, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// SessionConfig holds what a Session needs. It is fixed for the whole run.
type SessionConfig struct {
	Fetcher  transfer.Fetcher
	Progress *progress.Aggregator

	// Resume keeps partial files as resume points and leaves them on failure.
	// When false, every file of a failed session is deleted.
	Resume bool

	FlushInterval int64
	Logger        logrus.FieldLogger
	Metrics       *metrics.Recorder
}

// Session runs the stream transfers of one content item concurrently.
type Session struct {
	cfg SessionConfig
	log logrus.FieldLogger
}

// NewSession creates a Session.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{cfg: cfg, log: log}
}

// Run transfers every spec in parallel, one goroutine per spec.
//
// The first failure cancels the siblings and is returned as a
// *SessionError. With resume disabled, all spec files are then removed,
// including the ones that completed. On success the paths are returned in
// spec order.
func (s *Session) Run(ctx context.Context, specs []model.TransferSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, ErrEmptySession
	}
	paths := model.Paths(specs)
	if err := checkDistinct(paths); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(specs))

	for _, spec := range specs {
		spec := spec
		handle := s.cfg.Progress.Register(spec.Label, 0)
		unit := transfer.NewUnit(s.cfg.Fetcher, handle, transfer.Options{
			FlushInterval: s.cfg.FlushInterval,
			Kind:          spec.Kind.String(),
			Logger:        s.log.WithField("stream", spec.Label),
			Metrics:       s.cfg.Metrics,
		})

		g.Go(func() error {
			done := s.cfg.Metrics.TransferStarted()
			err := unit.Transfer(gctx, spec.URL, spec.Path, s.cfg.Resume)
			done(err)
			if err != nil {
				handle.Abort(err)
				return &SessionError{Label: spec.Label, Path: spec.Path, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if !s.cfg.Resume {
			if rmErr := ioutils.RemoveFiles(paths...); rmErr != nil {
				s.log.WithError(rmErr).Warn("could not remove intermediate files")
			}
		}
		return nil, err
	}
	return paths, nil
}

func checkDistinct(paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			return fmt.Errorf("two transfers target %s", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}
