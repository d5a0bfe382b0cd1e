// Package resolve turns a user-supplied identifier into content descriptors.
//
// The ManifestResolver reads a JSON stream manifest from a local file or an
// http(s) URL. A manifest is either one item:
//
//	{
//	  "id": "BV1xx411c7mD",
//	  "title": "Episode 1",
//	  "cover": "//i0.example.com/cover.jpg",
//	  "duration": 1440,
//	  "dash": {
//	    "video": [{"id": 80, "base_url": "https://cdn/v80.m4s", "codecs": "avc1.640032"}],
//	    "audio": [{"id": 30280, "base_url": "https://cdn/a.m4s"}]
//	  }
//	}
//
// or a collection of items processed as one batch:
//
//	{"title": "Season 1", "items": [ {...}, {...} ]}
//
// Streams are ordered best first (highest quality id) so the downloader can
// fall back to the first stream when no preferred quality matches.
package resolve
