package progress

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogSink renders progress as append-only log lines, one per bar each time
// it crosses a step. It is used when stdout is not a terminal.
type LogSink struct {
	log   logrus.FieldLogger
	steps int64
	now   func() time.Time

	// last is the last reported step per bar.
	last map[int64]int
}

// NewLogSink creates a LogSink reporting every 10%.
func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log, steps: 10, now: time.Now, last: make(map[int64]int)}
}

// Handle implements Sink.
func (s *LogSink) Handle(ev Event) {
	bar := ev.Bar
	entry := s.log.WithField("stream", bar.Label)

	switch ev.Type {
	case EventRegistered:
		s.last[bar.ID] = -1
	case EventSeeded:
		if bar.Current > 0 {
			entry.Infof("resuming at %s", FormatBytes(bar.Current))
		}
	case EventAdvanced:
		if bar.Total <= 0 {
			return
		}
		step := int(bar.Current * s.steps / bar.Total)
		if step <= s.last[bar.ID] {
			return
		}
		s.last[bar.ID] = step
		entry.Infof("%3.0f%%  %s / %s  ETA %s",
			bar.Percent()*100,
			FormatBytes(bar.Current), FormatBytes(bar.Total),
			FormatETA(bar.ETA(s.now())))
	case EventFinished:
		delete(s.last, bar.ID)
		entry.Infof("done  %s", FormatBytes(bar.Current))
	case EventAborted:
		delete(s.last, bar.ID)
		entry.WithError(bar.Err).Warn("stopped")
	}
}
