// Package download orchestrates fetching and merging content items.
//
// # Manager
//
// The Manager runs one item through these steps:
//
//  1. Check the final output against the overwrite policy (skip, overwrite, ask)
//  2. Select one stream per media kind
//  3. Download all streams concurrently in a Session
//  4. Merge the streams into the output container
//  5. Save cover art (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, deps, func(event download.StatusEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result := manager.Download(ctx, descriptor)
//	if result.Outcome == download.OutcomeFailed {
//	    log.Fatal(result.Err)
//	}
//
// # Sessions
//
// A Session starts one goroutine per stream through an errgroup. The first
// failure cancels the siblings. Whether files survive a failure depends on
// the resume policy: kept as resume points when enabled, all removed when
// disabled.
//
// # Batches
//
// RunBatch processes the items of a Collection strictly one after another.
// A failed item never aborts the batch. The report aggregates to:
//   - StatusSuccess: every item succeeded (skips and declines count as success)
//   - StatusTotalFailure: every item failed
//   - StatusPartialFailure: anything in between
//
// # Status Reporting
//
// User-facing messages are delivered via a callback receiving StatusEvent:
//
//	type StatusEvent struct {
//	    Message string
//	    Level   StatusLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Byte-level progress goes through the progress package instead.
package download
