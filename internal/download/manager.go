package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/handiism/dash-downloader/internal/config"
	ioutils "github.com/handiism/dash-downloader/internal/io"
	"github.com/handiism/dash-downloader/internal/merge"
	"github.com/handiism/dash-downloader/internal/metrics"
	"github.com/handiism/dash-downloader/internal/model"
	"github.com/handiism/dash-downloader/internal/playlist"
	"github.com/handiism/dash-downloader/internal/progress"
	"github.com/handiism/dash-downloader/internal/transfer"
)

// Client is the HTTP capability of the Manager: stream transfers plus small
// whole-body downloads (cover art).
type Client interface {
	transfer.Fetcher
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Deps are the collaborators of a Manager.
type Deps struct {
	Client   Client
	Progress *progress.Aggregator
	Muxer    merge.Muxer

	// Confirmer answers overwrite questions. Without one, "ask" declines.
	Confirmer Confirmer

	Logger  logrus.FieldLogger
	Metrics *metrics.Recorder

	// OnState receives item state changes.
	OnState func(ItemUpdate)
}

// ItemResult is the terminal record of one item.
type ItemResult struct {
	Title   string
	Output  string
	State   ItemState
	Outcome Outcome
	Err     error
}

// Manager runs content items through overwrite check, transfer session,
// merge and optional cover art.
type Manager struct {
	policy   config.Policy
	layout   model.Layout
	pref     model.Preference
	settings config.Settings

	client    Client
	session   *Session
	merger    *merge.Orchestrator
	confirmer Confirmer
	cover     *ioutils.CoverProcessor
	playlist  *playlist.Creator
	log       logrus.FieldLogger
	metrics   *metrics.Recorder

	onStatus func(StatusEvent)
	onState  func(ItemUpdate)
}

// NewManager creates a Manager. The settings are copied; later changes to
// them have no effect.
func NewManager(settings *config.Settings, deps Deps, onStatus func(StatusEvent)) *Manager {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	policy := settings.Policy()

	return &Manager{
		policy:   policy,
		layout:   model.Layout{Dir: settings.WorkDir, Container: settings.Container},
		pref:     model.Preference{Video: settings.VideoQuality, Audio: settings.AudioQuality},
		settings: *settings,

		client: deps.Client,
		session: NewSession(SessionConfig{
			Fetcher:       deps.Client,
			Progress:      deps.Progress,
			Resume:        policy.Resume,
			FlushInterval: settings.ProgressInterval,
			Logger:        log,
			Metrics:       deps.Metrics,
		}),
		merger:    merge.NewOrchestrator(deps.Muxer, policy.Resume, merge.Options{Logger: log, Metrics: deps.Metrics}),
		confirmer: deps.Confirmer,
		cover:     ioutils.NewCoverProcessor(settings.CoverMaxSize),
		playlist:  playlist.NewCreator(playlist.ParseFormat(settings.PlaylistFormat), settings.M3UExtended),
		log:       log,
		metrics:   deps.Metrics,

		onStatus: onStatus,
		onState:  deps.OnState,
	}
}

// Policy returns the frozen overwrite/resume policy.
func (m *Manager) Policy() config.Policy {
	return m.policy
}

// Download runs a single item.
func (m *Manager) Download(ctx context.Context, desc model.ContentDescriptor) ItemResult {
	return m.runItem(ctx, desc, 0, 1)
}

func (m *Manager) runItem(ctx context.Context, desc model.ContentDescriptor, index, count int) ItemResult {
	title := model.FileTitle(desc.Title)
	res := ItemResult{Title: desc.Title, Output: m.layout.OutputPath(title), State: StatePending}
	log := m.log.WithFields(logrus.Fields{"item": title, "index": index + 1, "count": count})

	setState := func(next ItemState) {
		if !res.State.CanTransition(next) {
			log.Errorf("invalid item transition %s -> %s", res.State, next)
		}
		res.State = next
		if m.onState != nil {
			m.onState(ItemUpdate{Index: index, Count: count, Title: desc.Title, State: next})
		}
	}
	fail := func(err error) ItemResult {
		setState(StateFailed)
		res.Outcome = OutcomeFailed
		res.Err = err
		m.metrics.RecordItem(res.Outcome.String())
		m.status(StatusEvent{Message: fmt.Sprintf("Failed %s: %v", desc.Title, err), Level: LevelError})
		log.WithError(err).Error("item failed")
		return res
	}
	finish := func(outcome Outcome, err error) ItemResult {
		setState(StateCompleted)
		res.Outcome = outcome
		res.Err = err
		m.metrics.RecordItem(outcome.String())
		return res
	}

	// The overwrite decision happens before anything is downloaded.
	if ioutils.FileExists(res.Output) {
		proceed, err := m.checkOverwrite(ctx, res.Output)
		if err != nil {
			return fail(err)
		}
		if !proceed {
			outcome := OutcomeSkipped
			if m.policy.Overwrite == config.OverwriteAsk {
				outcome = OutcomeDeclined
			}
			pv := &config.PolicyViolation{Reason: fmt.Sprintf("%s exists (%s)", filepath.Base(res.Output), outcome)}
			m.status(StatusEvent{Message: fmt.Sprintf("Skipping %s: output already exists", desc.Title), Level: LevelInfo})
			return finish(outcome, pv)
		}
	}

	streams, err := desc.Select(m.pref)
	if err != nil {
		return fail(err)
	}
	specs := model.NewTransferSpecs(m.layout, title, streams)

	setState(StateDownloading)
	m.status(StatusEvent{Message: fmt.Sprintf("Downloading %s (%d streams)", desc.Title, len(specs)), Level: LevelInfo})
	paths, err := m.session.Run(ctx, specs)
	if err != nil {
		return fail(err)
	}

	setState(StateMerging)
	m.status(StatusEvent{Message: fmt.Sprintf("Merging %s", filepath.Base(res.Output)), Level: LevelVerbose})
	if err := m.merger.Merge(ctx, model.NewMergeJob(specs, paths, res.Output)); err != nil {
		return fail(err)
	}

	if m.settings.SaveCover && desc.CoverURL != "" {
		if err := m.saveCover(ctx, desc.CoverURL, m.layout.CoverPath(title)); err != nil {
			m.status(StatusEvent{Message: fmt.Sprintf("Could not save cover for %s: %v", desc.Title, err), Level: LevelWarning})
		}
	}

	m.status(StatusEvent{Message: fmt.Sprintf("Saved %s", res.Output), Level: LevelSuccess})
	return finish(OutcomeCompleted, nil)
}

// checkOverwrite applies the overwrite policy to an existing output.
func (m *Manager) checkOverwrite(ctx context.Context, output string) (bool, error) {
	switch m.policy.Overwrite {
	case config.OverwriteAlways:
		m.status(StatusEvent{Message: fmt.Sprintf("Overwriting %s", filepath.Base(output)), Level: LevelVerbose})
		return true, nil
	case config.OverwriteAsk:
		if m.confirmer == nil {
			return false, nil
		}
		ok, err := m.confirmer.Confirm(ctx, fmt.Sprintf("%s already exists. Overwrite?", filepath.Base(output)))
		if err != nil {
			return false, fmt.Errorf("confirm overwrite: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

func (m *Manager) saveCover(ctx context.Context, url, path string) error {
	data, err := m.client.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	jpeg, err := m.cover.Process(ctx, data)
	if err != nil {
		return err
	}
	if err := ioutils.WriteFileAtomic(path, jpeg); err != nil {
		return err
	}
	m.status(StatusEvent{Message: fmt.Sprintf("Saved cover %s", filepath.Base(path)), Level: LevelVerbose})
	return nil
}

func (m *Manager) status(event StatusEvent) {
	if m.onStatus != nil {
		m.onStatus(event)
	}
}

// IsPolicyViolation reports whether err is a normal negative outcome
// rather than a failure.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, config.ErrPolicyViolation)
}
