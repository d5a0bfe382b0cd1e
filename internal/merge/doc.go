// Package merge runs the external multiplexer over a session's completed
// streams and cleans up afterwards.
//
// The Orchestrator passes inputs video first, then audio. On success every
// intermediate is deleted. On failure the partial output is deleted and the
// intermediates are kept only when the resume cache is enabled, so the next
// run can merge without downloading again.
//
//	orch := merge.NewOrchestrator(&merge.FFmpeg{Path: "ffmpeg"}, resume, merge.Options{})
//	err := orch.Merge(ctx, job)
//	var merr *merge.Error
//	if errors.As(err, &merr) {
//	    fmt.Println(merr.ExitCode, merr.Stderr)
//	}
package merge
