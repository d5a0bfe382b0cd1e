package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoStreams is returned when a descriptor has no stream usable for download.
var ErrNoStreams = errors.New("content has no downloadable streams")

// StreamKind tags a stream with the kind of media it carries.
type StreamKind int

const (
	// KindVideo is a video-only elementary stream.
	KindVideo StreamKind = iota

	// KindAudio is an audio-only elementary stream.
	KindAudio
)

// String returns the lowercase tag used in file names ("video", "audio").
func (k StreamKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return fmt.Sprintf("kind-%d", int(k))
	}
}

// ParseStreamKind parses the tag produced by StreamKind.String.
func ParseStreamKind(s string) (StreamKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return KindVideo, nil
	case "audio":
		return KindAudio, nil
	default:
		return 0, fmt.Errorf("unknown stream kind %q", s)
	}
}

// StreamRef points at one independently served media stream.
type StreamRef struct {
	// Kind is the media kind carried by the stream.
	Kind StreamKind

	// URL is the resource URL of the stream.
	URL string

	// Quality is the numeric quality identifier reported by the source.
	Quality int

	// Codec is informational only (e.g. "avc1.640032").
	Codec string
}

// Label returns a human readable label for progress display.
func (s StreamRef) Label() string {
	switch s.Kind {
	case KindVideo:
		return "video " + VideoQualityLabel(s.Quality)
	case KindAudio:
		return "audio " + AudioQualityLabel(s.Quality)
	default:
		return s.Kind.String()
	}
}

// ContentDescriptor identifies a downloadable item.
//
// Streams are listed best first within each kind; Select relies on that
// ordering when no preferred quality matches.
type ContentDescriptor struct {
	// ID is the source identifier of the item, if known.
	ID string

	// Title is the display title. It is sanitized before use in file names.
	Title string

	// CoverURL is an optional cover image URL.
	CoverURL string

	// Duration is informational, used for playlists.
	Duration time.Duration

	// Streams holds one or more streams per media kind.
	Streams []StreamRef
}

// Preference is the static quality preference applied by Select.
// A zero value means "best available".
type Preference struct {
	Video int
	Audio int
}

func (p Preference) forKind(k StreamKind) int {
	switch k {
	case KindVideo:
		return p.Video
	case KindAudio:
		return p.Audio
	}
	return 0
}

// Select picks exactly one stream per media kind present in the descriptor.
//
// For each kind the stream whose quality equals the preferred id wins;
// otherwise the first listed stream of that kind is used. The result is
// ordered video first, then audio.
func (d ContentDescriptor) Select(pref Preference) ([]StreamRef, error) {
	var selected []StreamRef
	for _, kind := range []StreamKind{KindVideo, KindAudio} {
		var first *StreamRef
		var match *StreamRef
		for i := range d.Streams {
			s := &d.Streams[i]
			if s.Kind != kind || s.URL == "" {
				continue
			}
			if first == nil {
				first = s
			}
			if want := pref.forKind(kind); want != 0 && s.Quality == want {
				match = s
				break
			}
		}
		switch {
		case match != nil:
			selected = append(selected, *match)
		case first != nil:
			selected = append(selected, *first)
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoStreams
	}
	return selected, nil
}

// Collection is an ordered set of items processed as one batch,
// e.g. the episodes of a season.
type Collection struct {
	Title string
	Items []ContentDescriptor
}

// IsBatch reports whether the collection should run through the batch controller.
func (c Collection) IsBatch() bool {
	return len(c.Items) > 1
}
