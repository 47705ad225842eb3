package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"chaptercut/domain/video"
	"chaptercut/infrastructure/shell"
)

// Clipper implements video.ClipExtractor using ffmpeg
type Clipper struct {
	ffmpegPath string
	runner     shell.CommandRunner
	streamCopy bool
	videoCodec string
	audioCodec string
}

// ClipperOption is a functional option for configuring Clipper
type ClipperOption func(*Clipper)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) ClipperOption {
	return func(c *Clipper) {
		if path != "" {
			c.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner shell.CommandRunner) ClipperOption {
	return func(c *Clipper) {
		c.runner = runner
	}
}

// WithStreamCopy copies the streams instead of re-encoding; cuts then land on keyframes
func WithStreamCopy(enabled bool) ClipperOption {
	return func(c *Clipper) {
		c.streamCopy = enabled
	}
}

// WithCodecs sets the encoders used when not stream copying
func WithCodecs(videoCodec, audioCodec string) ClipperOption {
	return func(c *Clipper) {
		if videoCodec != "" {
			c.videoCodec = videoCodec
		}
		if audioCodec != "" {
			c.audioCodec = audioCodec
		}
	}
}

// NewClipper creates a new FFmpeg-based clip extractor
func NewClipper(opts ...ClipperOption) *Clipper {
	c := &Clipper{
		ffmpegPath: "ffmpeg",
		runner:     &shell.ExecCommandRunner{},
		videoCodec: "libx264",
		audioCodec: "aac",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Extract implements video.ClipExtractor
func (c *Clipper) Extract(ctx context.Context, req video.ClipRequest) error {
	if err := c.runner.Run(ctx, c.ffmpegPath, c.args(req)...); err != nil {
		return fmt.Errorf("ffmpeg clip failed: %w", err)
	}
	return nil
}

func (c *Clipper) args(req video.ClipRequest) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", video.FormatClock(req.Start),
		"-i", req.SourcePath,
	}
	if !req.OpenEnd {
		args = append(args, "-t", strconv.Itoa(req.End-req.Start))
	}
	if c.streamCopy {
		args = append(args, "-c", "copy", "-avoid_negative_ts", "make_zero")
	} else {
		args = append(args, "-c:v", c.videoCodec, "-c:a", c.audioCodec)
	}
	args = append(args,
		"-movflags", "+faststart",
		"-y", // Overwrite output file if it exists
		req.OutputPath,
	)
	return args
}

// VerifyInstalled checks that ffmpeg is available
func (c *Clipper) VerifyInstalled(ctx context.Context) error {
	_, err := c.runner.Output(ctx, c.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Clipper implements video.ClipExtractor
var _ video.ClipExtractor = (*Clipper)(nil)
