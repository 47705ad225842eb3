// Package ytdlp wraps the yt-dlp command line tool for downloading videos and
// reading their metadata and chapter lists.
package ytdlp

import (
	"context"
	"fmt"
	"strings"

	"chaptercut/domain/video"
	"chaptercut/infrastructure/shell"
)

// Client runs yt-dlp
type Client struct {
	ytdlpPath   string
	ffmpegPath  string
	downloadDir string
	runner      shell.CommandRunner
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithYtDlpPath sets a custom yt-dlp executable path
func WithYtDlpPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.ytdlpPath = path
		}
	}
}

// WithFFmpegLocation points yt-dlp at the ffmpeg used for merging streams
func WithFFmpegLocation(path string) Option {
	return func(c *Client) {
		c.ffmpegPath = path
	}
}

// WithDownloadDir downloads sources into dir instead of the run's output directory
func WithDownloadDir(dir string) Option {
	return func(c *Client) {
		c.downloadDir = dir
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner shell.CommandRunner) Option {
	return func(c *Client) {
		c.runner = runner
	}
}

// NewClient creates a new yt-dlp client
func NewClient(opts ...Option) *Client {
	c := &Client{
		ytdlpPath: "yt-dlp",
		runner:    &shell.ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// VerifyInstalled checks that yt-dlp is available
func (c *Client) VerifyInstalled(ctx context.Context) error {
	_, err := c.runner.Output(ctx, c.ytdlpPath, "--version")
	if err != nil {
		return fmt.Errorf("yt-dlp not found or not executable: %w", err)
	}
	return nil
}

// unavailableMarkers are yt-dlp error fragments for videos that cannot be fetched at all
var unavailableMarkers = []string{
	"sign in to confirm your age",
	"age-restricted",
	"age restricted",
	"private video",
	"video unavailable",
	"has been removed",
	"members-only",
	"join this channel",
	"not available in your country",
	"this live event will begin",
}

// classify wraps err with video.ErrSourceUnavailable when yt-dlp reports an access problem
func classify(op string, err error) error {
	stderr := strings.ToLower(shell.StderrOf(err))
	for _, marker := range unavailableMarkers {
		if strings.Contains(stderr, marker) {
			return fmt.Errorf("%s: %w: %w", op, video.ErrSourceUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
