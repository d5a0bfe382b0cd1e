// Package progress aggregates live progress of concurrent transfers.
//
// Handles never touch display state. Each call on a Handle becomes an
// Event sent over a channel to the aggregator's single goroutine, which
// owns the per-bar Snapshot and forwards the event to a Sink. Sinks are
// therefore called from one goroutine only and need no locking.
//
//	agg := progress.New(progress.NewLogSink(logger))
//	defer agg.Close()
//
//	h := agg.Register("video 1080P", 0)
//	h.SetTotal(1000000)
//	h.Seed(400000)
//	h.Advance(600000)
//	h.Finish()
package progress
