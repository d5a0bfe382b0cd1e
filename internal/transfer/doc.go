// Package transfer implements the resumable byte-range fetch of one media
// stream into one local file.
//
// # Resume
//
// With resume enabled and a file already on disk, a Unit first probes the
// remote size with HEAD, then requests only the missing tail:
//
//	local 400000 bytes, remote 1000000 bytes
//	HEAD  → Content-Length: 1000000
//	GET   → Range: bytes=400000-
//	append 600000 bytes, final size 1000000
//
// A file that is already complete performs no GET. A remote resource that
// shrank below the local size is reported as ErrRemoteUnavailable rather
// than truncating local data.
//
// # Errors
//
// Every failure is an *Error whose Kind matches one of the sentinels:
//
//	errors.Is(err, transfer.ErrRemoteUnavailable) // probe failed or non-2xx
//	errors.Is(err, transfer.ErrLengthUnknown)     // no Content-Length
//	errors.Is(err, transfer.ErrTransfer)          // network or disk I/O
//
// A Unit never deletes its own output. Partial bytes stay on disk and the
// session decides what to clean up.
package transfer
