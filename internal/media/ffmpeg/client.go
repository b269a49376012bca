package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"linguo/internal/services"
)

var commandContext = exec.CommandContext

// SnippetRequest describes one clip render.
type SnippetRequest struct {
	Input string
	// Offset is the seek position in the source, in seconds. Duration caps
	// the rendered length, in seconds.
	Offset   float64
	Duration float64
	// Resolution is the output width in pixels; zero keeps the source width.
	Resolution int
	// Subtitles, when non-empty, is a cue file burned into the output.
	Subtitles string
	Filetype  string
	Output    string
}

// SnapshotRequest describes one still-frame render.
type SnapshotRequest struct {
	Input string
	// Offset is the frame position in the source, in seconds.
	Offset     float64
	Resolution int
	Output     string
}

// Client defines rendering behaviour.
type Client interface {
	Snippet(ctx context.Context, req SnippetRequest) error
	Snapshot(ctx context.Context, req SnapshotRequest) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout caps each invocation's runtime.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the ffmpeg command-line binary.
type CLI struct {
	binary  string
	timeout time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", timeout: 2 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Snippet renders a clip artifact.
func (c *CLI) Snippet(ctx context.Context, req SnippetRequest) error {
	if req.Input == "" {
		return errors.New("input path required")
	}
	if req.Output == "" {
		return errors.New("output path required")
	}
	args, err := snippetArgs(req)
	if err != nil {
		return err
	}
	return c.run(ctx, "snippet", args)
}

// Snapshot renders a single frame.
func (c *CLI) Snapshot(ctx context.Context, req SnapshotRequest) error {
	if req.Input == "" {
		return errors.New("input path required")
	}
	if req.Output == "" {
		return errors.New("output path required")
	}
	return c.run(ctx, "snapshot", snapshotArgs(req))
}

func (c *CLI) run(ctx context.Context, operation string, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrEngine, "ffmpeg", operation, tail(output), err)
	}
	return nil
}

func snippetArgs(req SnippetRequest) ([]string, error) {
	args := []string{
		"-y",
		"-ss", formatSeconds(req.Offset),
		"-i", req.Input,
		"-t", formatSeconds(req.Duration),
	}

	filters := []string{}
	if req.Filetype == "gif" {
		filters = append(filters, "fps=15")
	}
	if req.Resolution > 0 {
		filters = append(filters, fmt.Sprintf("scale=%d:-2:flags=lanczos", req.Resolution))
	}
	if req.Subtitles != "" {
		filters = append(filters, "subtitles="+escapeFilterPath(req.Subtitles)+":force_style='FontSize=24'")
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	switch req.Filetype {
	case "gif":
		args = append(args, "-loop", "0")
	case "mp4":
		args = append(args,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
			"-an",
		)
	case "webm":
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-crf", "35",
			"-b:v", "0",
			"-an",
		)
	default:
		return nil, services.Wrap(services.ErrValidation, "ffmpeg", "snippet",
			fmt.Sprintf("unsupported filetype %q", req.Filetype), nil)
	}

	return append(args, req.Output), nil
}

func snapshotArgs(req SnapshotRequest) []string {
	args := []string{
		"-y",
		"-ss", formatSeconds(req.Offset),
		"-i", req.Input,
		"-frames:v", "1",
	}
	if req.Resolution > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-2:flags=lanczos", req.Resolution))
	}
	return append(args, req.Output)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// escapeFilterPath escapes the characters the ffmpeg filter graph parser
// treats specially in the subtitles filename argument.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}

func tail(output []byte) string {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return "no engine output"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}

var _ Client = (*CLI)(nil)
