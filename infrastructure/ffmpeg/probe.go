package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
	"chaptercut/infrastructure/shell"
)

// probeOutput is the subset of `ffprobe -print_format json` output we read
type probeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Chapters []struct {
		StartTime string            `json:"start_time"`
		Tags      map[string]string `json:"tags"`
	} `json:"chapters"`
}

// Prober reads local video files with ffprobe. It serves local runs as metadata
// provider, source provider and chapter scraper (embedded container chapters).
type Prober struct {
	ffprobePath string
	runner      shell.CommandRunner
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) ProberOption {
	return func(p *Prober) {
		if path != "" {
			p.ffprobePath = path
		}
	}
}

// WithProberCommandRunner sets a custom command runner (for testing)
func WithProberCommandRunner(runner shell.CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// NewProber creates a new ffprobe-based prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		ffprobePath: "ffprobe",
		runner:      &shell.ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Prober) probe(ctx context.Context, path string) (*probeOutput, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", video.ErrSourceUnavailable, err)
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_chapters",
		path,
	}
	out, err := p.runner.Output(ctx, p.ffprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result probeOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe JSON output: %w", err)
	}
	return &result, nil
}

// Duration returns the length of the file in whole seconds, or an invalid duration
// when the container does not record one
func (p *Prober) Duration(ctx context.Context, path string) (video.ISODuration, error) {
	result, err := p.probe(ctx, path)
	if err != nil {
		return video.ISODuration{}, err
	}
	return parseProbeDuration(result.Format.Duration)
}

func parseProbeDuration(s string) (video.ISODuration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return video.ISODuration{}, nil
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return video.ISODuration{}, fmt.Errorf("failed to parse duration '%s': %w", s, err)
	}
	return video.ISODuration{Seconds: int(math.Floor(seconds)), Valid: true}, nil
}

// Lookup implements video.MetadataProvider for a local file path
func (p *Prober) Lookup(ctx context.Context, path string) (*video.Metadata, error) {
	result, err := p.probe(ctx, path)
	if err != nil {
		return nil, err
	}
	duration, err := parseProbeDuration(result.Format.Duration)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if t := strings.TrimSpace(result.Format.Tags["title"]); t != "" {
		title = t
	}

	return &video.Metadata{
		ID:          base,
		Title:       title,
		Description: result.Format.Tags["comment"],
		Duration:    duration,
	}, nil
}

// Acquire implements video.SourceProvider for a local file. The file belongs to the
// caller and is never marked owned.
func (p *Prober) Acquire(ctx context.Context, path, outputDir string, opts video.AcquireOptions) (*video.Source, error) {
	duration, err := p.Duration(ctx, path)
	if err != nil {
		return nil, err
	}
	return &video.Source{Path: path, Duration: duration.Seconds, Owned: false}, nil
}

// Scrape implements chapter.Scraper using the chapters embedded in the container
func (p *Prober) Scrape(ctx context.Context, path string) ([]chapter.RawMarker, error) {
	result, err := p.probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", chapter.ErrScraperUnavailable, err)
	}

	markers := make([]chapter.RawMarker, 0, len(result.Chapters))
	for _, ch := range result.Chapters {
		start, err := strconv.ParseFloat(ch.StartTime, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chapter start %q: %w", ch.StartTime, err)
		}
		markers = append(markers, chapter.RawMarker{
			Clock: video.FormatClock(int(math.Floor(start))),
			Title: strings.TrimSpace(ch.Tags["title"]),
		})
	}
	return markers, nil
}

// VerifyInstalled checks that ffprobe is available
func (p *Prober) VerifyInstalled(ctx context.Context) error {
	_, err := p.runner.Output(ctx, p.ffprobePath, "-version")
	if err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	return nil
}

var (
	_ video.MetadataProvider = (*Prober)(nil)
	_ video.SourceProvider   = (*Prober)(nil)
	_ chapter.Scraper        = (*Prober)(nil)
)
