package ytdlp

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"chaptercut/domain/video"
)

// SourceBaseName is the default file name (without extension) downloads are written to.
// The leading dot keeps it out of the names clips can take.
const SourceBaseName = ".source"

// fallbackHeights is tried, in order, below any requested resolution
var fallbackHeights = []int{720, 480}

// FormatSelector turns a resolution hint such as "720p" into a yt-dlp format string.
// The requested height comes first, then 720p and 480p, then whatever is best.
func FormatSelector(resolution string) (string, error) {
	var heights []int
	if r := strings.TrimSpace(strings.ToLower(resolution)); r != "" {
		h, err := strconv.Atoi(strings.TrimSuffix(r, "p"))
		if err != nil || h <= 0 {
			return "", fmt.Errorf("invalid resolution %q (expected e.g. 720p)", resolution)
		}
		heights = append(heights, h)
	}
	for _, h := range fallbackHeights {
		if len(heights) == 0 || h < heights[0] {
			heights = append(heights, h)
		}
	}

	var parts []string
	for _, h := range heights {
		parts = append(parts,
			fmt.Sprintf("bestvideo[height=%d][ext=mp4]+bestaudio[ext=m4a]", h),
			fmt.Sprintf("best[height=%d][ext=mp4]", h),
		)
	}
	parts = append(parts, "bestvideo[ext=mp4]+bestaudio[ext=m4a]", "best[ext=mp4]", "best")
	return strings.Join(parts, "/"), nil
}

// Acquire implements video.SourceProvider by downloading the video. The returned
// source is owned and removed by the segmentation run once it is done.
func (c *Client) Acquire(ctx context.Context, identifier, outputDir string, opts video.AcquireOptions) (*video.Source, error) {
	format, err := FormatSelector(opts.Resolution)
	if err != nil {
		return nil, err
	}

	dir := outputDir
	if c.downloadDir != "" {
		dir = c.downloadDir
	}
	name := SourceBaseName
	if opts.FileName != "" {
		name = opts.FileName
	}

	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"-f", format,
		"--merge-output-format", "mp4",
		"-o", filepath.Join(dir, name+".%(ext)s"),
		"--print", "after_move:duration",
		"--print", "after_move:filepath",
	}
	if c.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegPath)
	}
	args = append(args, identifier)

	out, err := c.runner.Output(ctx, c.ytdlpPath, args...)
	if err != nil {
		return nil, classify("yt-dlp download failed", err)
	}

	return parseDownloadOutput(string(out))
}

// parseDownloadOutput reads the duration and file path lines printed after the download
func parseDownloadOutput(out string) (*video.Source, error) {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("yt-dlp did not report the downloaded file (output: %q)", out)
	}

	path := lines[len(lines)-1]
	duration := 0
	if d, err := strconv.ParseFloat(lines[len(lines)-2], 64); err == nil && d > 0 {
		duration = int(d)
	}

	return &video.Source{Path: path, Duration: duration, Owned: true}, nil
}

// Ensure Client implements video.SourceProvider
var _ video.SourceProvider = (*Client)(nil)
