// Package http provides the authenticated HTTP client used to fetch media streams.
//
// The Client in this package handles:
//   - User-Agent, Cookie and Referer headers required by the media CDN
//   - HEAD probes exposing status and Content-Length
//   - GET requests with an optional byte Range, returning a streamable body
//   - A response header timeout (there is no overall request timeout, since
//     stream bodies can take arbitrarily long)
//
// # Basic Usage
//
//	client := http.NewClient(http.Config{UserAgent: ua, Cookie: cookie, Referer: ref})
//
//	// Probe remote size
//	head, err := client.Head(ctx, streamURL)
//	fmt.Println(head.ContentLength)
//
//	// Resume from byte 400000
//	resp, err := client.Get(ctx, streamURL, &http.Range{Start: 400000, End: -1})
//	defer resp.Body.Close()
//
// # Small Downloads
//
// GetBytes reads a whole body into memory. Use it for cover art only:
//
//	img, err := client.GetBytes(ctx, coverURL)
package http
