package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	dlhttp "github.com/handiism/dash-downloader/internal/http"
	ioutils "github.com/handiism/dash-downloader/internal/io"
	"github.com/handiism/dash-downloader/internal/metrics"
)

const (
	// DefaultFlushInterval is the default progress coalescing size.
	DefaultFlushInterval = 1 << 20

	copyBufferSize = 256 << 10
)

// Fetcher is the HTTP capability a Unit needs. *http.Client implements it.
type Fetcher interface {
	Head(ctx context.Context, url string) (*dlhttp.Response, error)
	Get(ctx context.Context, url string, rng *dlhttp.Range) (*dlhttp.Response, error)
}

// Progress receives the position of one transfer.
//
// SetTotal and Seed are called before the first Advance. Seed may be called
// again with 0 when the server ignores a range request and the file restarts.
type Progress interface {
	SetTotal(total int64)
	Seed(n int64)
	Advance(n int64)
	Finish()
}

// State is the byte position of a transfer: what is on disk and what the
// remote declares. Total is -1 until known.
type State struct {
	OnDisk int64
	Total  int64
}

// Options configures a Unit.
type Options struct {
	// FlushInterval is the number of bytes coalesced per progress update.
	FlushInterval int64

	// Kind labels byte metrics ("video", "audio").
	Kind string

	Logger  logrus.FieldLogger
	Metrics *metrics.Recorder
}

// Unit performs one resumable HTTP fetch into one local file and reports
// progress to the handle it is bound to.
type Unit struct {
	fetcher  Fetcher
	progress Progress
	every    int64
	kind     string
	log      logrus.FieldLogger
	metrics  *metrics.Recorder
}

// NewUnit binds a fetcher and a progress handle into a Unit.
func NewUnit(fetcher Fetcher, progress Progress, opts Options) *Unit {
	every := opts.FlushInterval
	if every <= 0 {
		every = DefaultFlushInterval
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Unit{
		fetcher:  fetcher,
		progress: progress,
		every:    every,
		kind:     opts.Kind,
		log:      log,
		metrics:  opts.Metrics,
	}
}

// Transfer fetches url into path.
//
// With resume set and path present, the remote size is probed first. A local
// file of the same size is complete and returns without a GET; a smaller one
// is continued with a range request. Without resume the file is truncated
// and fetched from byte 0.
//
// On success the progress handle ends at the remote total and Finish has
// been called. On failure partial bytes remain on disk.
func (u *Unit) Transfer(ctx context.Context, url, path string, resume bool) error {
	log := u.log.WithFields(logrus.Fields{"url": url, "path": path, "resume": resume})

	if resume {
		size, exists, err := ioutils.FileSize(path)
		if err != nil {
			return &Error{Kind: KindTransfer, URL: url, Path: path, Err: err}
		}
		if exists {
			state, done, err := u.probe(ctx, url, path, size)
			if err != nil {
				return err
			}
			if done {
				log.WithField("size", size).Debug("already complete, skipping transfer")
				u.metrics.AddResumed(size)
				u.progress.Finish()
				return nil
			}
			log.WithFields(logrus.Fields{"on_disk": state.OnDisk, "total": state.Total}).Debug("resuming transfer")
			u.metrics.AddResumed(state.OnDisk)
			return u.fetch(ctx, url, path, state, log)
		}
	}

	// Fresh start: discard whatever is there before the request goes out.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return &Error{Kind: KindTransfer, URL: url, Path: path, Err: err}
	}
	f.Close()

	return u.fetch(ctx, url, path, State{OnDisk: 0, Total: -1}, log)
}

// probe issues the HEAD request for a resume and decides whether the local
// file is already complete.
func (u *Unit) probe(ctx context.Context, url, path string, size int64) (State, bool, error) {
	head, err := u.fetcher.Head(ctx, url)
	if err != nil {
		return State{}, false, &Error{Kind: KindRemoteUnavailable, URL: url, Path: path, Err: err}
	}
	if !head.OK() {
		return State{}, false, &Error{Kind: KindRemoteUnavailable, URL: url, Path: path, StatusCode: head.StatusCode}
	}
	if head.ContentLength < 0 {
		return State{}, false, &Error{Kind: KindLengthUnknown, URL: url, Path: path, StatusCode: head.StatusCode}
	}

	total := head.ContentLength
	if size > total {
		return State{}, false, &Error{
			Kind: KindRemoteUnavailable, URL: url, Path: path,
			Err: fmt.Errorf("remote size %d is smaller than local size %d", total, size),
		}
	}

	u.progress.SetTotal(total)
	u.progress.Seed(size)
	return State{OnDisk: size, Total: total}, size == total, nil
}

// fetch issues the GET for state and streams the body to path.
func (u *Unit) fetch(ctx context.Context, url, path string, state State, log logrus.FieldLogger) error {
	var rng *dlhttp.Range
	if state.OnDisk > 0 {
		rng = &dlhttp.Range{Start: state.OnDisk, End: -1}
	}

	resp, err := u.fetcher.Get(ctx, url, rng)
	if err != nil {
		return &Error{Kind: KindTransfer, URL: url, Path: path, Err: err}
	}
	defer resp.Body.Close()

	flags := os.O_WRONLY | os.O_APPEND
	switch {
	case rng != nil && resp.StatusCode == http.StatusPartialContent:
		if err := checkContentRange(resp, state); err != nil {
			return &Error{Kind: KindTransfer, URL: url, Path: path, StatusCode: resp.StatusCode, Err: err}
		}

	case resp.StatusCode == http.StatusOK:
		if rng != nil {
			log.Warn("server ignored range request, restarting from byte 0")
			state.OnDisk = 0
			u.progress.Seed(0)
		}
		if resp.ContentLength < 0 {
			return &Error{Kind: KindLengthUnknown, URL: url, Path: path, StatusCode: resp.StatusCode}
		}
		state.Total = resp.ContentLength
		u.progress.SetTotal(state.Total)
		flags = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

	default:
		return &Error{Kind: KindTransfer, URL: url, Path: path, StatusCode: resp.StatusCode}
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return &Error{Kind: KindTransfer, URL: url, Path: path, Err: err}
	}

	pw := &progressWriter{
		w:     f,
		p:     u.progress,
		every: u.every,
		onFlush: func(n int64) {
			u.metrics.AddBytes(u.kind, n)
		},
	}
	written, copyErr := io.CopyBuffer(pw, resp.Body, make([]byte, copyBufferSize))
	pw.flush()
	closeErr := f.Close()

	if err := errors.Join(copyErr, closeErr); err != nil {
		return &Error{Kind: KindTransfer, URL: url, Path: path, Err: err}
	}
	if got := state.OnDisk + written; got != state.Total {
		return &Error{
			Kind: KindTransfer, URL: url, Path: path,
			Err: fmt.Errorf("got %d of %d bytes: %w", got, state.Total, io.ErrUnexpectedEOF),
		}
	}

	log.WithField("bytes", written).Debug("transfer complete")
	u.progress.Finish()
	return nil
}

// checkContentRange verifies a 206 response continues exactly where the
// local file ends.
func checkContentRange(resp *dlhttp.Response, state State) error {
	cr := resp.Header.Get("Content-Range")
	if cr == "" {
		if resp.ContentLength >= 0 && resp.ContentLength != state.Total-state.OnDisk {
			return fmt.Errorf("partial body of %d bytes, want %d", resp.ContentLength, state.Total-state.OnDisk)
		}
		return nil
	}

	start, _, total, err := dlhttp.ParseContentRange(cr)
	if err != nil {
		return err
	}
	if start != state.OnDisk {
		return fmt.Errorf("range starts at %d, want %d", start, state.OnDisk)
	}
	if total >= 0 && total != state.Total {
		return fmt.Errorf("range total %d differs from probed size %d", total, state.Total)
	}
	return nil
}
