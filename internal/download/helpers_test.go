package download

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/handiism/dash-downloader/internal/config"
	dlhttp "github.com/handiism/dash-downloader/internal/http"
	"github.com/handiism/dash-downloader/internal/model"
	"github.com/handiism/dash-downloader/internal/progress"
)

// mediaServer serves fixed resources with Range support. Unknown paths 404,
// paths under /forbidden/ return 403.
type mediaServer struct {
	*httptest.Server
	mu       sync.Mutex
	content  map[string][]byte
	requests int
}

func newMediaServer(t *testing.T, content map[string][]byte) *mediaServer {
	t.Helper()
	s := &mediaServer{content: content}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		body, ok := s.content[r.URL.Path]
		s.mu.Unlock()

		if strings.HasPrefix(r.URL.Path, "/forbidden/") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, r.URL.Path, time.Time{}, bytes.NewReader(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *mediaServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type mockMuxer struct {
	mock.Mock
}

func (m *mockMuxer) Mux(ctx context.Context, inputs []string, output string) error {
	args := m.Called(ctx, inputs, output)
	return args.Error(0)
}

func writeOutput(args mock.Arguments) {
	os.WriteFile(args.String(2), []byte("muxed"), 0644)
}

func succeedingMuxer() *mockMuxer {
	m := &mockMuxer{}
	m.On("Mux", mock.Anything, mock.Anything, mock.Anything).Run(writeOutput).Return(nil)
	return m
}

type fixedConfirmer struct {
	answer    bool
	questions []string
}

func (c *fixedConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	c.questions = append(c.questions, question)
	return c.answer, nil
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func newAggregator(t *testing.T) *progress.Aggregator {
	t.Helper()
	agg := progress.New(nil)
	t.Cleanup(agg.Close)
	return agg
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.WorkDir = t.TempDir()
	return s
}

func descriptor(srv *mediaServer, title, videoPath, audioPath string) model.ContentDescriptor {
	return model.ContentDescriptor{
		Title: title,
		Streams: []model.StreamRef{
			{Kind: model.KindVideo, URL: srv.URL + videoPath, Quality: 80},
			{Kind: model.KindAudio, URL: srv.URL + audioPath, Quality: 30280},
		},
	}
}

type managerFixture struct {
	manager  *Manager
	muxer    *mockMuxer
	events   []StatusEvent
	updates  []ItemUpdate
	settings *config.Settings
}

func newManagerFixture(t *testing.T, settings *config.Settings, muxer *mockMuxer, confirmer Confirmer) *managerFixture {
	t.Helper()
	f := &managerFixture{muxer: muxer, settings: settings}
	deps := Deps{
		Client:   dlhttp.NewClient(dlhttp.Config{}),
		Progress: newAggregator(t),
		Muxer:    muxer,
		Logger:   nullLogger(),
		OnState:  func(u ItemUpdate) { f.updates = append(f.updates, u) },
	}
	if confirmer != nil {
		deps.Confirmer = confirmer
	}
	f.manager = NewManager(settings, deps, func(e StatusEvent) { f.events = append(f.events, e) })
	return f
}

func (f *managerFixture) states() []ItemState {
	var states []ItemState
	for _, u := range f.updates {
		states = append(states, u.State)
	}
	return states
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}
