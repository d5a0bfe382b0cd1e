package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/handiism/dash-downloader/internal/model"
)

type mockMuxer struct {
	mock.Mock
}

func (m *mockMuxer) Mux(ctx context.Context, inputs []string, output string) error {
	args := m.Called(ctx, inputs, output)
	return args.Error(0)
}

// fixture creates one video and one audio intermediate in a temp dir.
func fixture(t *testing.T) (model.MergeJob, string) {
	t.Helper()
	dir := t.TempDir()
	video := filepath.Join(dir, "t.video.80")
	audio := filepath.Join(dir, "t.audio.30280")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0644))
	require.NoError(t, os.WriteFile(audio, []byte("a"), 0644))

	job := model.MergeJob{
		Inputs: []model.MergeInput{
			{Kind: model.KindAudio, Path: audio},
			{Kind: model.KindVideo, Path: video},
		},
		Output: filepath.Join(dir, "t.mp4"),
	}
	return job, dir
}

func writeOutput(args mock.Arguments) {
	os.WriteFile(args.String(2), []byte("muxed"), 0644)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestOrchestrator_Success(t *testing.T) {
	for _, resume := range []bool{true, false} {
		job, dir := fixture(t)
		m := &mockMuxer{}
		m.On("Mux", mock.Anything, []string{filepath.Join(dir, "t.video.80"), filepath.Join(dir, "t.audio.30280")}, job.Output).
			Run(writeOutput).Return(nil).Once()

		err := NewOrchestrator(m, resume, Options{}).Merge(context.Background(), job)
		require.NoError(t, err)
		m.AssertExpectations(t)

		assert.Equal(t, []string{"t.mp4"}, listDir(t, dir), "resume=%v", resume)
	}
}

func TestOrchestrator_FailureKeepsInputsWithResume(t *testing.T) {
	job, dir := fixture(t)
	m := &mockMuxer{}
	cause := &Error{Output: job.Output, ExitCode: 1, Stderr: "Invalid data found"}
	m.On("Mux", mock.Anything, mock.Anything, job.Output).Run(writeOutput).Return(cause)

	err := NewOrchestrator(m, true, Options{}).Merge(context.Background(), job)

	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 1, merr.ExitCode)
	assert.ElementsMatch(t, []string{"t.video.80", "t.audio.30280"}, listDir(t, dir))
}

func TestOrchestrator_FailureRemovesEverythingWithoutResume(t *testing.T) {
	job, dir := fixture(t)
	m := &mockMuxer{}
	m.On("Mux", mock.Anything, mock.Anything, job.Output).Run(writeOutput).Return(errors.New("killed"))

	log, _ := test.NewNullLogger()
	err := NewOrchestrator(m, false, Options{Logger: log}).Merge(context.Background(), job)

	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.EqualError(t, merr.Err, "killed")
	assert.Empty(t, listDir(t, dir))
}

func TestOrchestrator_MissingOutput(t *testing.T) {
	job, dir := fixture(t)
	m := &mockMuxer{}
	m.On("Mux", mock.Anything, mock.Anything, job.Output).Return(nil)

	err := NewOrchestrator(m, true, Options{}).Merge(context.Background(), job)
	assert.ErrorIs(t, err, ErrNoOutput)
	assert.Len(t, listDir(t, dir), 2)
}

func TestFFmpeg_Args(t *testing.T) {
	f := &FFmpeg{}
	got := f.Args([]string{"a b.video.80", "a b.audio.30280"}, "a b.mp4")
	want := []string{"-y", "-loglevel", "error", "-i", "a b.video.80", "-i", "a b.audio.30280", "-c:v", "copy", "-c:a", "copy", "a b.mp4"}
	assert.Equal(t, want, got)

	assert.Equal(t,
		"ffmpeg -y -loglevel error -i 'a b.video.80' -i 'a b.audio.30280' -c:v copy -c:a copy 'a b.mp4'",
		f.Command([]string{"a b.video.80", "a b.audio.30280"}, "a b.mp4"))
}

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestFFmpeg_MuxSuccess(t *testing.T) {
	bin := fakeFFmpeg(t, `for last; do :; done; echo muxed > "$last"`+"\n")
	out := filepath.Join(t.TempDir(), "out.mp4")

	err := (&FFmpeg{Path: bin}).Mux(context.Background(), []string{"v", "a"}, out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestFFmpeg_MuxFailure(t *testing.T) {
	bin := fakeFFmpeg(t, "echo 'v: Invalid data found when processing input' >&2\nexit 3\n")

	err := (&FFmpeg{Path: bin}).Mux(context.Background(), []string{"v", "a"}, "out.mp4")

	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 3, merr.ExitCode)
	assert.Equal(t, "v: Invalid data found when processing input", merr.Stderr)
	assert.Contains(t, merr.Error(), "exit status 3")
}

func TestFFmpeg_Probe(t *testing.T) {
	bin := fakeFFmpeg(t, "echo 'ffmpeg version 6.1 Copyright (c) 2000-2023'\necho 'built with gcc'\n")

	version, err := (&FFmpeg{Path: bin}).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg version 6.1 Copyright (c) 2000-2023", version)

	_, err = (&FFmpeg{Path: filepath.Join(t.TempDir(), "missing")}).Probe(context.Background())
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{max: 5}
	tb.Write([]byte("abc"))
	tb.Write([]byte("defg"))
	assert.Equal(t, "cdefg", tb.String())

	tb.Write([]byte("0123456789"))
	assert.Equal(t, "56789", tb.String())
}
