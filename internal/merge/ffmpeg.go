package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/sirupsen/logrus"
)

const stderrTail = 4 << 10

// Muxer combines elementary streams into one container file.
type Muxer interface {
	Mux(ctx context.Context, inputs []string, output string) error
}

// FFmpeg muxes with the ffmpeg binary using stream copy (no transcoding).
type FFmpeg struct {
	// Path is the ffmpeg executable; empty means "ffmpeg" from PATH.
	Path string

	Logger logrus.FieldLogger
}

func (f *FFmpeg) bin() string {
	if f.Path == "" {
		return "ffmpeg"
	}
	return f.Path
}

func (f *FFmpeg) logger() logrus.FieldLogger {
	if f.Logger == nil {
		return logrus.StandardLogger()
	}
	return f.Logger
}

// Args returns the ffmpeg arguments for inputs and output.
func (f *FFmpeg) Args(inputs []string, output string) []string {
	args := []string{"-y", "-loglevel", "error"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	return append(args, "-c:v", "copy", "-c:a", "copy", output)
}

// Command renders the full command line, shell quoted.
func (f *FFmpeg) Command(inputs []string, output string) string {
	return shellescape.QuoteCommand(append([]string{f.bin()}, f.Args(inputs, output)...))
}

// Mux runs ffmpeg. A non-zero exit yields an *Error carrying the exit code
// and the tail of stderr.
func (f *FFmpeg) Mux(ctx context.Context, inputs []string, output string) error {
	command := f.Command(inputs, output)
	f.logger().WithField("command", command).Debug("running ffmpeg")

	cmd := exec.CommandContext(ctx, f.bin(), f.Args(inputs, output)...)
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		merr := &Error{Output: output, Command: command, ExitCode: -1, Stderr: strings.TrimSpace(stderr.String()), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			merr.ExitCode = exitErr.ExitCode()
		}
		return merr
	}
	return nil
}

// Probe runs "ffmpeg -version" and returns the first output line.
func (f *FFmpeg) Probe(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, f.bin(), "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg not usable at %q: %w", f.bin(), err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > t.max {
		p = p[len(p)-t.max:]
	}
	if over := t.buf.Len() + len(p) - t.max; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
