package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/dash-downloader/internal/model"
)

const itemManifest = `{
  "id": "BV1",
  "title": "Episode 1",
  "cover": "//img.example.com/c.jpg",
  "duration": 1440,
  "dash": {
    "video": [
      {"id": 64, "base_url": "https://cdn/v64"},
      {"id": 80, "baseUrl": "https://cdn/v80", "codecs": "avc1"},
      {"id": 80, "base_url": "", "backup_url": ["//cdn/v80-hevc"], "bandwidth": 9}
    ],
    "audio": [
      {"id": 30216, "base_url": "https://cdn/a64"},
      {"id": 30280, "base_url": "https://cdn/a192"}
    ]
  }
}`

const collectionManifest = `{
  "title": "Season 1",
  "items": [
    {"title": "Ep 1", "dash": {"video": [{"id": 80, "base_url": "https://cdn/1v"}], "audio": [{"id": 30280, "base_url": "https://cdn/1a"}]}},
    {"title": "Ep 2", "dash": {"video": [{"id": 80, "base_url": "https://cdn/2v"}], "audio": [{"id": 30280, "base_url": "https://cdn/2a"}]}}
  ]
}`

type fakeGetter struct {
	docs map[string]string
}

func (g *fakeGetter) GetBytes(ctx context.Context, url string) ([]byte, error) {
	doc, ok := g.docs[url]
	if !ok {
		return nil, errors.New("HTTP 404")
	}
	return []byte(doc), nil
}

func TestParse_Item(t *testing.T) {
	coll, err := Parse([]byte(itemManifest))
	require.NoError(t, err)
	require.Len(t, coll.Items, 1)

	item := coll.Items[0]
	assert.Equal(t, "Episode 1", item.Title)
	assert.Equal(t, "https://img.example.com/c.jpg", item.CoverURL)
	assert.Equal(t, 24*time.Minute, item.Duration)

	var urls []string
	for _, s := range item.Streams {
		urls = append(urls, s.URL)
	}
	assert.Equal(t, []string{
		"https://cdn/v80-hevc", "https://cdn/v80", "https://cdn/v64",
		"https://cdn/a192", "https://cdn/a64",
	}, urls, "streams are ordered best first per kind")
	assert.Equal(t, model.KindAudio, item.Streams[3].Kind)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{`, "parse manifest"},
		{"no title", `{"dash": {"video": [{"id": 1, "base_url": "x"}]}}`, "no title"},
		{"no streams", `{"title": "t"}`, "no downloadable streams"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestManifestResolver_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "season.json")
	require.NoError(t, os.WriteFile(path, []byte(collectionManifest), 0644))
	r := NewManifestResolver(nil)

	coll, err := r.ResolveCollection(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Season 1", coll.Title)
	assert.True(t, coll.IsBatch())

	_, err = r.Resolve(context.Background(), path)
	assert.ErrorIs(t, err, ErrCollection)
}

func TestManifestResolver_URL(t *testing.T) {
	r := NewManifestResolver(&fakeGetter{docs: map[string]string{"https://host/m.json": itemManifest}})

	desc, err := r.Resolve(context.Background(), "https://host/m.json")
	require.NoError(t, err)
	assert.Equal(t, "BV1", desc.ID)

	_, err = r.Resolve(context.Background(), "https://host/other.json")
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "https://host/other.json", rerr.Identifier)
}

func TestManifestResolver_Stdin(t *testing.T) {
	r := NewManifestResolver(nil)
	r.stdin = strings.NewReader(itemManifest)

	desc, err := r.Resolve(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, "Episode 1", desc.Title)
}

func TestManifestResolver_MissingFile(t *testing.T) {
	_, err := NewManifestResolver(nil).Resolve(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
