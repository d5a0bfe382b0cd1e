package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

const eventBuffer = 256

// EventType identifies what changed in a bar.
type EventType int

const (
	EventRegistered EventType = iota
	EventTotal
	EventSeeded
	EventAdvanced
	EventFinished
	EventAborted
)

func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "registered"
	case EventTotal:
		return "total"
	case EventSeeded:
		return "seeded"
	case EventAdvanced:
		return "advanced"
	case EventFinished:
		return "finished"
	case EventAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Snapshot is the state of one bar after an event was applied.
type Snapshot struct {
	ID    int64
	Label string

	// Total is -1 until known.
	Total   int64
	Current int64

	// Base is the seeded position; bytes below it were not transferred in this run.
	Base    int64
	Started time.Time

	Done   bool
	Failed bool
	Err    error
}

// Percent returns completion in [0, 1], or 0 when the total is unknown.
func (s Snapshot) Percent() float64 {
	if s.Total <= 0 {
		if s.Done {
			return 1
		}
		return 0
	}
	p := float64(s.Current) / float64(s.Total)
	if p > 1 {
		return 1
	}
	return p
}

// Rate returns bytes per second transferred since the bar started.
func (s Snapshot) Rate(now time.Time) float64 {
	elapsed := now.Sub(s.Started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Current-s.Base) / elapsed
}

// ETA estimates the remaining time, or -1 when unknown.
func (s Snapshot) ETA(now time.Time) time.Duration {
	rate := s.Rate(now)
	if s.Total <= 0 || rate <= 0 {
		return -1
	}
	remaining := s.Total - s.Current
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// Event is delivered to the Sink after the aggregator applied it.
type Event struct {
	Type  EventType
	Bar   Snapshot
	Delta int64
}

// Sink renders events. Handle is always called from the aggregator goroutine.
type Sink interface {
	Handle(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Handle calls f(ev).
func (f SinkFunc) Handle(ev Event) { f(ev) }

// message is what handles send: an event type plus its argument.
type message struct {
	typ   EventType
	id    int64
	label string
	n     int64
	err   error
}

// Aggregator owns every bar of one invocation.
type Aggregator struct {
	sink   Sink
	msgs   chan message
	quit   chan struct{}
	done   chan struct{}
	nextID atomic.Int64
	once   sync.Once
	now    func() time.Time

	// bars is only touched by run.
	bars map[int64]*Snapshot
}

// New starts an aggregator forwarding to sink. Close must be called to
// flush pending events and stop the goroutine.
func New(sink Sink) *Aggregator {
	a := newAggregator(sink, time.Now)
	go a.run()
	return a
}

func newAggregator(sink Sink, now func() time.Time) *Aggregator {
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	return &Aggregator{
		sink: sink,
		msgs: make(chan message, eventBuffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		now:  now,
		bars: make(map[int64]*Snapshot),
	}
}

// Register creates a bar. A total of 0 or less means unknown.
func (a *Aggregator) Register(label string, total int64) *Handle {
	id := a.nextID.Add(1)
	if total <= 0 {
		total = -1
	}
	a.send(message{typ: EventRegistered, id: id, label: label, n: total})
	return &Handle{agg: a, id: id}
}

// Close delivers every event sent so far and stops the aggregator.
// Events sent after Close are dropped.
func (a *Aggregator) Close() {
	a.once.Do(func() {
		close(a.quit)
	})
	<-a.done
}

func (a *Aggregator) send(m message) {
	select {
	case a.msgs <- m:
	case <-a.quit:
	}
}

func (a *Aggregator) run() {
	defer close(a.done)
	for {
		select {
		case m := <-a.msgs:
			a.apply(m)
		case <-a.quit:
			for {
				select {
				case m := <-a.msgs:
					a.apply(m)
				default:
					return
				}
			}
		}
	}
}

func (a *Aggregator) apply(m message) {
	if m.typ == EventRegistered {
		a.bars[m.id] = &Snapshot{ID: m.id, Label: m.label, Total: m.n, Started: a.now()}
	}
	bar, ok := a.bars[m.id]
	if !ok {
		return
	}

	switch m.typ {
	case EventTotal:
		bar.Total = m.n
	case EventSeeded:
		bar.Current = m.n
		bar.Base = m.n
		bar.Started = a.now()
	case EventAdvanced:
		bar.Current += m.n
	case EventFinished:
		if bar.Total > 0 {
			bar.Current = bar.Total
		}
		bar.Done = true
	case EventAborted:
		bar.Failed = true
		bar.Err = m.err
	}

	a.sink.Handle(Event{Type: m.typ, Bar: *bar, Delta: m.n})

	if bar.Done || bar.Failed {
		delete(a.bars, m.id)
	}
}

// Handle is the producer side of one bar. It is safe to use from any
// goroutine and implements transfer.Progress.
type Handle struct {
	agg *Aggregator
	id  int64
}

// SetTotal sets the expected size.
func (h *Handle) SetTotal(total int64) {
	h.agg.send(message{typ: EventTotal, id: h.id, n: total})
}

// Seed sets the initial position of a resumed transfer.
func (h *Handle) Seed(n int64) {
	h.agg.send(message{typ: EventSeeded, id: h.id, n: n})
}

// Advance moves the bar forward by n bytes.
func (h *Handle) Advance(n int64) {
	if n <= 0 {
		return
	}
	h.agg.send(message{typ: EventAdvanced, id: h.id, n: n})
}

// Finish marks the bar complete.
func (h *Handle) Finish() {
	h.agg.send(message{typ: EventFinished, id: h.id})
}

// Abort marks the bar failed.
func (h *Handle) Abort(err error) {
	h.agg.send(message{typ: EventAborted, id: h.id, err: err})
}
