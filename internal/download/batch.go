package download

import (
	"context"
	"fmt"

	ioutils "github.com/handiism/dash-downloader/internal/io"
	"github.com/handiism/dash-downloader/internal/model"
	"github.com/handiism/dash-downloader/internal/playlist"
)

// Status is the aggregate result of a batch.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartialFailure
	StatusTotalFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartialFailure:
		return "partial failure"
	case StatusTotalFailure:
		return "total failure"
	default:
		return "unknown"
	}
}

// ExitCode maps the status to the process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartialFailure:
		return 2
	default:
		return 1
	}
}

// BatchReport holds every item result of a batch, in item order.
type BatchReport struct {
	Title        string
	Items        []ItemResult
	PlaylistPath string
}

// Counts returns how many items succeeded and failed.
func (r BatchReport) Counts() (succeeded, failed int) {
	for _, item := range r.Items {
		if item.Outcome.Success() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Status aggregates the item outcomes: all succeeded is Success, all
// failed is TotalFailure, anything else is PartialFailure.
func (r BatchReport) Status() Status {
	succeeded, failed := r.Counts()
	switch {
	case failed == 0:
		return StatusSuccess
	case succeeded == 0:
		return StatusTotalFailure
	default:
		return StatusPartialFailure
	}
}

// RunBatch processes the collection's items one after another. A failed
// item never stops the batch; only cancellation of ctx does, in which case
// the remaining items are recorded as failed.
func (m *Manager) RunBatch(ctx context.Context, coll model.Collection) BatchReport {
	report := BatchReport{Title: coll.Title, Items: make([]ItemResult, 0, len(coll.Items))}
	count := len(coll.Items)

	for i, desc := range coll.Items {
		if err := ctx.Err(); err != nil {
			res := ItemResult{
				Title:   desc.Title,
				Output:  m.layout.OutputPath(desc.Title),
				State:   StateFailed,
				Outcome: OutcomeFailed,
				Err:     err,
			}
			report.Items = append(report.Items, res)
			continue
		}

		m.status(StatusEvent{Message: fmt.Sprintf("[%d/%d] %s", i+1, count, desc.Title), Level: LevelInfo})
		report.Items = append(report.Items, m.runItem(ctx, desc, i, count))
	}

	if m.settings.CreatePlaylist && coll.IsBatch() && coll.Title != "" {
		path, err := m.writePlaylist(coll, report)
		if err != nil {
			m.status(StatusEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else if path != "" {
			report.PlaylistPath = path
			m.status(StatusEvent{Message: fmt.Sprintf("Created playlist %s", path), Level: LevelSuccess})
		}
	}

	succeeded, failed := report.Counts()
	level := LevelSuccess
	if failed > 0 {
		level = LevelWarning
	}
	m.status(StatusEvent{
		Message: fmt.Sprintf("Finished %s: %d succeeded, %d failed (%s)", coll.Title, succeeded, failed, report.Status()),
		Level:   level,
	})
	return report
}

// writePlaylist lists every item whose output exists, in item order.
func (m *Manager) writePlaylist(coll model.Collection, report BatchReport) (string, error) {
	var entries []playlist.Entry
	for i, item := range report.Items {
		if !item.Outcome.Success() || !ioutils.FileExists(item.Output) {
			continue
		}
		entries = append(entries, playlist.Entry{
			Title:    item.Title,
			Path:     item.Output,
			Duration: coll.Items[i].Duration,
		})
	}
	if len(entries) == 0 {
		return "", nil
	}

	path := m.layout.PlaylistPath(coll.Title, m.playlist.Format().Extension())
	content := m.playlist.Create(coll.Title, entries)
	if err := ioutils.WriteFileAtomic(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}
