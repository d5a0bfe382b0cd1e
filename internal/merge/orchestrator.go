package merge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	ioutils "github.com/handiism/dash-downloader/internal/io"
	"github.com/handiism/dash-downloader/internal/metrics"
	"github.com/handiism/dash-downloader/internal/model"
)

// ErrNoOutput is wrapped when the muxer reported success but left no output file.
var ErrNoOutput = errors.New("merge produced no output file")

// Error is a failed merge. The underlying cause is preserved.
type Error struct {
	Output   string
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := "merge " + e.Output
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures an Orchestrator.
type Options struct {
	Logger  logrus.FieldLogger
	Metrics *metrics.Recorder
}

// Orchestrator runs one MergeJob and applies the cleanup policy.
type Orchestrator struct {
	muxer   Muxer
	resume  bool
	log     logrus.FieldLogger
	metrics *metrics.Recorder
}

// NewOrchestrator creates an Orchestrator. resume decides whether inputs
// survive a failed merge.
func NewOrchestrator(muxer Muxer, resume bool, opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{muxer: muxer, resume: resume, log: log, metrics: opts.Metrics}
}

// Merge muxes job's inputs (video before audio) into job.Output.
//
// Success leaves exactly the output file: all inputs are removed. Failure
// leaves no output file, and the inputs only when resume is enabled.
// Merges are never retried.
func (o *Orchestrator) Merge(ctx context.Context, job model.MergeJob) error {
	inputs := job.OrderedPaths()
	log := o.log.WithField("output", job.Output)

	start := time.Now()
	err := o.muxer.Mux(ctx, inputs, job.Output)
	if err == nil && !ioutils.FileExists(job.Output) {
		err = ErrNoOutput
	}
	o.metrics.ObserveMerge(time.Since(start), err)

	if err != nil {
		if rmErr := ioutils.RemoveFiles(job.Output); rmErr != nil {
			log.WithError(rmErr).Warn("could not remove partial output")
		}
		if !o.resume {
			if rmErr := ioutils.RemoveFiles(inputs...); rmErr != nil {
				log.WithError(rmErr).Warn("could not remove intermediate files")
			}
		}

		var merr *Error
		if !errors.As(err, &merr) {
			err = &Error{Output: job.Output, ExitCode: -1, Err: err}
		}
		return err
	}

	if rmErr := ioutils.RemoveFiles(inputs...); rmErr != nil {
		log.WithError(rmErr).Warn("merged, but could not remove intermediate files")
	}
	log.Debug("merge complete")
	return nil
}
