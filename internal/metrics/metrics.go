// Package metrics records download, merge and item outcomes as Prometheus
// metrics and writes them to a node_exporter textfile at exit.
//
// A nil *Recorder is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dashdl"

// Recorder holds the pre-configured metrics of one invocation.
type Recorder struct {
	registry *prometheus.Registry

	// transferBytes counts body bytes written to disk, by stream kind
	transferBytes *prometheus.CounterVec
	// transfersTotal counts finished transfer units by result
	transfersTotal *prometheus.CounterVec
	// transferDuration tracks wall time per transfer unit
	transferDuration *prometheus.HistogramVec
	// resumedBytes counts bytes found on disk and not fetched again
	resumedBytes prometheus.Counter
	// mergeDuration tracks external merge time by result
	mergeDuration *prometheus.HistogramVec
	// itemsTotal counts batch items by terminal outcome
	itemsTotal *prometheus.CounterVec
	// activeTransfers tracks concurrently running units
	activeTransfers prometheus.Gauge
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.transferBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_bytes_total",
			Help:      "Stream bytes written to disk.",
		},
		[]string{"kind"},
	)
	r.transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Finished transfer units by result.",
		},
		[]string{"result"},
	)
	// Buckets: 1s .. ~68min
	r.transferDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Wall time of one transfer unit.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 13),
		},
		[]string{"result"},
	)
	r.resumedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resumed_bytes_total",
		Help:      "Bytes already on disk when a transfer resumed.",
	})
	r.mergeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Wall time of the external merge step.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	r.itemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Processed content items by outcome.",
		},
		[]string{"outcome"},
	)
	r.activeTransfers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_transfers",
		Help:      "Transfer units currently running.",
	})

	r.registry.MustRegister(
		r.transferBytes,
		r.transfersTotal,
		r.transferDuration,
		r.resumedBytes,
		r.mergeDuration,
		r.itemsTotal,
		r.activeTransfers,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// TransferStarted marks one unit as running and returns a func that records
// its result and duration.
//
// Example:
//
//	done := rec.TransferStarted()
//	err := unit.Transfer(ctx, url, path, resume, handle)
//	done(err)
func (r *Recorder) TransferStarted() func(err error) {
	if r == nil {
		return func(error) {}
	}
	start := time.Now()
	r.activeTransfers.Inc()
	return func(err error) {
		r.activeTransfers.Dec()
		result := resultLabel(err)
		r.transfersTotal.WithLabelValues(result).Inc()
		r.transferDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}
}

// AddBytes counts n bytes written for a stream kind.
func (r *Recorder) AddBytes(kind string, n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.transferBytes.WithLabelValues(kind).Add(float64(n))
}

// AddResumed counts n bytes reused from a partial file.
func (r *Recorder) AddResumed(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.resumedBytes.Add(float64(n))
}

// ObserveMerge records one merge invocation.
func (r *Recorder) ObserveMerge(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.mergeDuration.WithLabelValues(resultLabel(err)).Observe(d.Seconds())
}

// RecordItem counts one item outcome ("completed", "failed", "skipped").
func (r *Recorder) RecordItem(outcome string) {
	if r == nil {
		return
	}
	r.itemsTotal.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes all metrics in the text exposition format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
