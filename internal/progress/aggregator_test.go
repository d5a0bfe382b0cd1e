package progress

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Handle(ev Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) last(label string) Snapshot {
	var snap Snapshot
	for _, ev := range s.events {
		if ev.Bar.Label == label {
			snap = ev.Bar
		}
	}
	return snap
}

func TestAggregator_ConcurrentAdvance(t *testing.T) {
	sink := &recordingSink{}
	agg := New(sink)

	labels := []string{"video", "audio", "extra"}
	var wg sync.WaitGroup
	for _, label := range labels {
		h := agg.Register(label, 100000)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				h.Advance(100)
			}
			h.Finish()
		}()
	}
	wg.Wait()
	agg.Close()

	for _, label := range labels {
		snap := sink.last(label)
		assert.Equal(t, int64(100000), snap.Current, label)
		assert.True(t, snap.Done, label)
	}
}

func TestAggregator_SeedAndOrder(t *testing.T) {
	sink := &recordingSink{}
	agg := New(sink)

	h := agg.Register("video 1080P", 0)
	h.SetTotal(1000000)
	h.Seed(400000)
	h.Advance(600000)
	h.Finish()
	agg.Close()

	require.Len(t, sink.events, 5)
	types := make([]EventType, len(sink.events))
	for i, ev := range sink.events {
		types[i] = ev.Type
	}
	assert.Equal(t, []EventType{EventRegistered, EventTotal, EventSeeded, EventAdvanced, EventFinished}, types)
	assert.Equal(t, int64(-1), sink.events[0].Bar.Total)

	final := sink.events[4].Bar
	assert.Equal(t, int64(1000000), final.Current)
	assert.Equal(t, int64(400000), final.Base)
	assert.Equal(t, 1.0, final.Percent())
}

func TestAggregator_Abort(t *testing.T) {
	sink := &recordingSink{}
	agg := New(sink)

	boom := errors.New("boom")
	h := agg.Register("audio", 10)
	h.Abort(boom)
	h.Advance(5)
	agg.Close()

	snap := sink.last("audio")
	assert.True(t, snap.Failed)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Len(t, sink.events, 2, "events after a terminal state are dropped")
}

func TestAggregator_SendAfterClose(t *testing.T) {
	agg := New(nil)
	h := agg.Register("video", 10)
	agg.Close()
	agg.Close()

	assert.NotPanics(t, func() {
		h.Advance(1)
		h.Finish()
	})
}

func TestSnapshot_ETA(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{Total: 1000, Current: 600, Base: 400, Started: start}

	now := start.Add(2 * time.Second)
	assert.Equal(t, 100.0, snap.Rate(now))
	assert.Equal(t, 4*time.Second, snap.ETA(now))

	snap.Total = -1
	assert.Equal(t, time.Duration(-1), snap.ETA(now))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1 << 30, "1.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-1, "--:--"},
		{0, "00:00"},
		{75 * time.Second, "01:15"},
		{3723 * time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.d); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLogSink(t *testing.T) {
	log, hook := test.NewNullLogger()
	agg := New(NewLogSink(log))

	h := agg.Register("video", 1000)
	for i := 0; i < 10; i++ {
		h.Advance(100)
	}
	h.Finish()
	agg.Close()

	var infos int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.InfoLevel {
			infos++
		}
	}
	// 10 steps plus "done"
	assert.Equal(t, 11, infos)
	assert.Equal(t, "video", hook.LastEntry().Data["stream"])
}
