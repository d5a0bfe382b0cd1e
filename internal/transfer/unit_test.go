package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dlhttp "github.com/handiism/dash-downloader/internal/http"
)

type fakeProgress struct {
	mu       sync.Mutex
	total    int64
	pos      int64
	seeds    []int64
	advanced int64
	updates  int
	finished bool
}

func (p *fakeProgress) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

func (p *fakeProgress) Seed(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeds = append(p.seeds, n)
	p.pos = n
}

func (p *fakeProgress) Advance(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos += n
	p.advanced += n
	p.updates++
}

func (p *fakeProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

// rangeServer serves content with full Range support and counts requests.
type rangeServer struct {
	*httptest.Server
	content []byte
	heads   atomic.Int32
	gets    atomic.Int32
	ranges  []string
	mu      sync.Mutex
}

func newRangeServer(t *testing.T, content []byte) *rangeServer {
	t.Helper()
	s := &rangeServer{content: content}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			s.heads.Add(1)
		case http.MethodGet:
			s.gets.Add(1)
			s.mu.Lock()
			s.ranges = append(s.ranges, r.Header.Get("Range"))
			s.mu.Unlock()
		}
		http.ServeContent(w, r, "stream", time.Time{}, bytes.NewReader(s.content))
	}))
	t.Cleanup(s.Close)
	return s
}

func randomContent(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(b)
	return b
}

func newTestUnit(p Progress) *Unit {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewUnit(dlhttp.NewClient(dlhttp.Config{}), p, Options{FlushInterval: 64 << 10, Kind: "video", Logger: log})
}

func TestTransfer_Fresh(t *testing.T) {
	content := randomContent(300000)
	srv := newRangeServer(t, content)
	path := filepath.Join(t.TempDir(), "t.video.80")
	require.NoError(t, os.WriteFile(path, []byte("stale data"), 0644))

	p := &fakeProgress{}
	err := newTestUnit(p).Transfer(context.Background(), srv.URL, path, false)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), p.total)
	assert.Equal(t, p.total, p.pos)
	assert.True(t, p.finished)
	assert.Equal(t, int32(0), srv.heads.Load())
	assert.Equal(t, []string{""}, srv.ranges)
}

func TestTransfer_ResumeScenario(t *testing.T) {
	content := randomContent(1000000)
	srv := newRangeServer(t, content)
	path := filepath.Join(t.TempDir(), "t.video.80")
	require.NoError(t, os.WriteFile(path, content[:400000], 0644))

	p := &fakeProgress{}
	err := newTestUnit(p).Transfer(context.Background(), srv.URL, path, true)
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.heads.Load())
	assert.Equal(t, []string{"bytes=400000-"}, srv.ranges)
	assert.Equal(t, []int64{400000}, p.seeds)
	assert.Equal(t, int64(600000), p.advanced)
	assert.Equal(t, int64(1000000), p.pos)
	assert.True(t, p.finished)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1000000)
	assert.True(t, bytes.Equal(content, got), "resumed file must be byte-identical")
}

func TestTransfer_ResumeMissingFileStartsFresh(t *testing.T) {
	content := randomContent(5000)
	srv := newRangeServer(t, content)
	path := filepath.Join(t.TempDir(), "t.audio.30280")

	p := &fakeProgress{}
	require.NoError(t, newTestUnit(p).Transfer(context.Background(), srv.URL, path, true))

	assert.Equal(t, int32(0), srv.heads.Load())
	got, _ := os.ReadFile(path)
	assert.Equal(t, content, got)
}

func TestTransfer_AlreadyComplete(t *testing.T) {
	content := randomContent(4096)
	srv := newRangeServer(t, content)
	path := filepath.Join(t.TempDir(), "t.video.80")
	require.NoError(t, os.WriteFile(path, content, 0644))

	p := &fakeProgress{}
	require.NoError(t, newTestUnit(p).Transfer(context.Background(), srv.URL, path, true))

	assert.Equal(t, int32(0), srv.gets.Load(), "complete file must not be fetched")
	assert.True(t, p.finished)
	assert.Equal(t, int64(4096), p.pos)
}

func TestTransfer_RemoteShrank(t *testing.T) {
	content := randomContent(1000)
	srv := newRangeServer(t, content)
	path := filepath.Join(t.TempDir(), "t.video.80")
	local := randomContent(2000)
	require.NoError(t, os.WriteFile(path, local, 0644))

	err := newTestUnit(&fakeProgress{}).Transfer(context.Background(), srv.URL, path, true)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, int32(0), srv.gets.Load())

	got, _ := os.ReadFile(path)
	assert.Equal(t, local, got, "local data must be untouched")
}

func TestTransfer_ProbeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "t.video.80")
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0644))

	err := newTestUnit(&fakeProgress{}).Transfer(context.Background(), srv.URL, path, true)
	require.ErrorIs(t, err, ErrRemoteUnavailable)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
}

func TestTransfer_LengthUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("chunk one"))
		w.(http.Flusher).Flush()
		w.Write([]byte("chunk two"))
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "t.video.80")

	err := newTestUnit(&fakeProgress{}).Transfer(context.Background(), srv.URL, path, false)
	assert.ErrorIs(t, err, ErrLengthUnknown)
}

func TestTransfer_ProbeLengthUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "t.video.80")
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0644))

	err := newTestUnit(&fakeProgress{}).Transfer(context.Background(), srv.URL, path, true)
	assert.ErrorIs(t, err, ErrLengthUnknown)
}

func TestTransfer_RangeIgnored(t *testing.T) {
	content := randomContent(10000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		if r.Method == http.MethodGet {
			w.Write(content)
		}
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "t.video.80")
	require.NoError(t, os.WriteFile(path, content[:3000], 0644))

	p := &fakeProgress{}
	require.NoError(t, newTestUnit(p).Transfer(context.Background(), srv.URL, path, true))

	got, _ := os.ReadFile(path)
	assert.Equal(t, content, got)
	assert.Equal(t, []int64{3000, 0}, p.seeds)
	assert.Equal(t, int64(len(content)), p.pos)
}

func TestTransfer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "t.video.80")

	err := newTestUnit(&fakeProgress{}).Transfer(context.Background(), srv.URL, path, false)
	require.ErrorIs(t, err, ErrTransfer)
	assert.NotErrorIs(t, err, ErrRemoteUnavailable)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusForbidden, terr.StatusCode)
}

func TestTransfer_ShortBodyKeepsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write(make([]byte, 400))
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "t.video.80")

	p := &fakeProgress{}
	err := newTestUnit(p).Transfer(context.Background(), srv.URL, path, false)
	require.ErrorIs(t, err, ErrTransfer)
	assert.False(t, p.finished)

	info, statErr := os.Stat(path)
	require.NoError(t, statErr, "partial file must remain on disk")
	assert.Equal(t, int64(400), info.Size())
}

func TestTransfer_Cancelled(t *testing.T) {
	content := randomContent(1000)
	srv := newRangeServer(t, content)
	path := filepath.Join(t.TempDir(), "t.video.80")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestUnit(&fakeProgress{}).Transfer(ctx, srv.URL, path, false)
	require.ErrorIs(t, err, ErrTransfer)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProgressWriter_Coalesces(t *testing.T) {
	p := &fakeProgress{}
	var flushed int64
	pw := &progressWriter{w: io.Discard, p: p, every: 1000, onFlush: func(n int64) { flushed += n }}

	for i := 0; i < 100; i++ {
		pw.Write(make([]byte, 55))
	}
	pw.flush()

	assert.Equal(t, int64(5500), p.advanced)
	assert.Equal(t, int64(5500), flushed)
	assert.LessOrEqual(t, p.updates, 6)
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindRemoteUnavailable, Path: "a.video.80", StatusCode: 404}
	assert.Equal(t, "remote unavailable: a.video.80 (HTTP 404)", err.Error())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.NotErrorIs(t, err, ErrTransfer)
}
