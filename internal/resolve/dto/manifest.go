// Package dto holds the JSON shapes of stream manifests.
package dto

import (
	"sort"
	"strings"
	"time"

	"github.com/handiism/dash-downloader/internal/model"
)

// JSONManifest is the top-level manifest document: either a single item
// (Title + Dash) or a collection (Title + Items).
type JSONManifest struct {
	JSONItem
	Items []JSONItem `json:"items"`
}

// JSONItem is one downloadable item with its DASH stream lists.
type JSONItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Cover    string    `json:"cover"`
	Duration float64   `json:"duration"` // seconds
	Dash     *JSONDash `json:"dash"`
}

// JSONDash lists the separately served video and audio streams.
type JSONDash struct {
	Video []JSONMedia `json:"video"`
	Audio []JSONMedia `json:"audio"`
}

// JSONMedia is one stream rendition. Both snake_case and camelCase URL keys
// occur in the wild; the first non-empty one wins.
type JSONMedia struct {
	ID           int      `json:"id"`
	BaseURL      string   `json:"base_url"`
	BaseURLCamel string   `json:"baseUrl"`
	BackupURL    []string `json:"backup_url"`
	Bandwidth    int64    `json:"bandwidth"`
	Codecs       string   `json:"codecs"`
}

// URL returns the primary URL, falling back to the first backup.
func (m JSONMedia) URL() string {
	for _, u := range append([]string{m.BaseURL, m.BaseURLCamel}, m.BackupURL...) {
		if u != "" {
			return fixScheme(u)
		}
	}
	return ""
}

// IsCollection reports whether the manifest lists several items.
func (jm *JSONManifest) IsCollection() bool {
	return len(jm.Items) > 0
}

// ToCollection converts the manifest to a model.Collection. A single-item
// manifest becomes a collection of one.
func (jm *JSONManifest) ToCollection() model.Collection {
	if !jm.IsCollection() {
		item := jm.JSONItem.ToDescriptor()
		return model.Collection{Title: item.Title, Items: []model.ContentDescriptor{item}}
	}

	coll := model.Collection{Title: jm.Title}
	for _, ji := range jm.Items {
		coll.Items = append(coll.Items, ji.ToDescriptor())
	}
	return coll
}

// ToDescriptor converts an item to a model.ContentDescriptor. Streams are
// ordered best first within each kind: higher quality id, then bandwidth.
func (ji *JSONItem) ToDescriptor() model.ContentDescriptor {
	desc := model.ContentDescriptor{
		ID:       ji.ID,
		Title:    ji.Title,
		CoverURL: fixScheme(ji.Cover),
		Duration: time.Duration(ji.Duration * float64(time.Second)),
	}
	if ji.Dash == nil {
		return desc
	}

	desc.Streams = append(desc.Streams, streams(model.KindVideo, ji.Dash.Video)...)
	desc.Streams = append(desc.Streams, streams(model.KindAudio, ji.Dash.Audio)...)
	return desc
}

func streams(kind model.StreamKind, media []JSONMedia) []model.StreamRef {
	sorted := make([]JSONMedia, 0, len(media))
	for _, m := range media {
		if m.URL() != "" {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ID != sorted[j].ID {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].Bandwidth > sorted[j].Bandwidth
	})

	refs := make([]model.StreamRef, len(sorted))
	for i, m := range sorted {
		refs[i] = model.StreamRef{Kind: kind, URL: m.URL(), Quality: m.ID, Codec: m.Codecs}
	}
	return refs
}

// fixScheme turns protocol-relative URLs ("//host/path") into https URLs.
func fixScheme(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
