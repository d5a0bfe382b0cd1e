package transfer

import "io"

// progressWriter wraps a writer and reports written bytes to a Progress,
// coalescing updates so a fast stream does not flood the aggregator.
type progressWriter struct {
	w       io.Writer
	p       Progress
	every   int64
	pending int64

	// onFlush receives every flushed delta (metrics).
	onFlush func(n int64)
}

func (pw *progressWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.pending += int64(n)
	if pw.pending >= pw.every {
		pw.flush()
	}
	return n, err
}

func (pw *progressWriter) flush() {
	if pw.pending == 0 {
		return
	}
	pw.p.Advance(pw.pending)
	if pw.onFlush != nil {
		pw.onFlush(pw.pending)
	}
	pw.pending = 0
}
