package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"chaptercut/application/chapters"
	"chaptercut/application/segment"
	"chaptercut/domain/catalog"
	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
)

// Segmenter cuts a source into clips
type Segmenter interface {
	Run(ctx context.Context, req segment.Request) (*segment.Report, error)
}

// DirAllocator picks the output directory for a video
type DirAllocator interface {
	// AllocateDir creates root/name, or root/name_N when it exists and reuse is false
	AllocateDir(root, name string, reuse bool) (string, error)
}

// Input contains all input parameters for a split run
type Input struct {
	Identifier string // URL, video id or local path
	Mode       chapters.Mode
	Literal    []chapter.LiteralInterval
	OutputRoot string
	Resolution string
	Resume     bool // reuse an existing output directory so finished clips are skipped
}

// Result contains the results of a split run
type Result struct {
	Video     *video.Metadata
	Origin    string
	OutputDir string
	Intervals []chapter.Interval
	Report    *segment.Report
	Elapsed   time.Duration
}

// Preview is what a split run would produce, without touching the source
type Preview struct {
	Video     *video.Metadata
	Origin    string
	Intervals []chapter.Interval
}

// Service runs metadata lookup, interval derivation, output directory setup,
// segmentation and catalog persistence for one video
type Service struct {
	metadata  video.MetadataProvider
	chapters  *chapters.Service
	segmenter Segmenter
	dirs      DirAllocator
	store     catalog.Store // optional
	output    io.Writer
	logger    *slog.Logger
}

// NewService creates a new split service; store may be nil
func NewService(
	metadata video.MetadataProvider,
	chaptersService *chapters.Service,
	segmenter Segmenter,
	dirs DirAllocator,
	store catalog.Store,
	output io.Writer,
	logger *slog.Logger,
) *Service {
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		metadata:  metadata,
		chapters:  chaptersService,
		segmenter: segmenter,
		dirs:      dirs,
		store:     store,
		output:    output,
		logger:    logger,
	}
}

// Preview looks up the video and derives its intervals
func (s *Service) Preview(ctx context.Context, input Input) (*Preview, error) {
	if strings.TrimSpace(input.Identifier) == "" {
		return nil, errors.New("video URL or path is required")
	}

	meta, err := s.metadata.Lookup(ctx, input.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up video: %w", err)
	}

	resolved, err := s.chapters.Resolve(ctx, chapters.Input{
		Mode:        input.Mode,
		Identifier:  input.Identifier,
		Description: meta.Description,
		Literal:     input.Literal,
		Duration:    meta.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot derive chapters for %q: %w", meta.Title, err)
	}

	return &Preview{Video: meta, Origin: resolved.Origin, Intervals: resolved.Intervals}, nil
}

// Split runs the whole pipeline. Failures of individual clips are reported in the
// result; an error is returned only when the source or its chapters cannot be established,
// or when the run is interrupted. An interrupted run returns the partial result as well.
func (s *Service) Split(ctx context.Context, input Input) (*Result, error) {
	startTime := time.Now()

	if strings.TrimSpace(input.OutputRoot) == "" {
		return nil, errors.New("output root is required")
	}

	fmt.Fprintf(s.output, "[1/3] Looking up video...\n")
	preview, err := s.Preview(ctx, input)
	if err != nil {
		return nil, err
	}
	meta := preview.Video
	fmt.Fprintf(s.output, "      Title: %s\n", meta.Title)
	fmt.Fprintf(s.output, "      Duration: %s\n", meta.Duration)
	fmt.Fprintf(s.output, "      Chapters: %d (from %s)\n\n", len(preview.Intervals), preview.Origin)

	outputDir, err := s.dirs.AllocateDir(input.OutputRoot, video.SanitizeFilename(meta.Title), input.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	s.logger.Info("output directory ready", "dir", outputDir, "resume", input.Resume)

	fmt.Fprintf(s.output, "[2/3] Extracting chapters into %s\n", outputDir)
	source := input.Identifier
	if meta.URL != "" {
		source = meta.URL
	}
	report, err := s.segmenter.Run(ctx, segment.Request{
		Identifier: source,
		OutputDir:  outputDir,
		Intervals:  preview.Intervals,
		Acquire:    video.AcquireOptions{Resolution: input.Resolution},
	})
	if err != nil {
		if report == nil {
			return nil, fmt.Errorf("segmentation failed: %w", err)
		}
		return &Result{
			Video:     meta,
			Origin:    preview.Origin,
			OutputDir: outputDir,
			Intervals: preview.Intervals,
			Report:    report,
			Elapsed:   time.Since(startTime),
		}, fmt.Errorf("run for %q stopped: %w", meta.Title, err)
	}
	fmt.Fprintln(s.output)

	fmt.Fprintf(s.output, "[3/3] Recording run...\n")
	s.record(ctx, meta, outputDir, report)
	fmt.Fprintln(s.output)

	elapsed := time.Since(startTime)
	fmt.Fprintf(s.output, "Done! Completed in %s\n", formatDuration(elapsed))

	return &Result{
		Video:     meta,
		Origin:    preview.Origin,
		OutputDir: outputDir,
		Intervals: preview.Intervals,
		Report:    report,
		Elapsed:   elapsed,
	}, nil
}

// record persists the run when at least one clip is on disk. The clips already exist,
// so a catalog failure is only logged.
func (s *Service) record(ctx context.Context, meta *video.Metadata, outputDir string, report *segment.Report) {
	if s.store == nil {
		fmt.Fprintf(s.output, "      Catalog disabled\n")
		return
	}
	if len(report.Extracted())+len(report.Skipped()) == 0 {
		s.logger.Warn("no clip produced, run not recorded", "video_id", meta.ID)
		fmt.Fprintf(s.output, "      Not recorded: no clip was produced\n")
		return
	}

	v := catalog.Video{
		ID:          meta.ID,
		URL:         meta.URL,
		Title:       meta.Title,
		Duration:    meta.Duration.Seconds,
		OutputDir:   outputDir,
		ProcessedAt: time.Now().UTC(),
	}
	chs := make([]catalog.Chapter, 0, len(report.Clips))
	for _, c := range report.Clips {
		ch := catalog.Chapter{Title: c.Interval.Title, Start: c.Interval.Start, End: c.Interval.End}
		if c.Status == segment.StatusExtracted || c.Status == segment.StatusSkipped {
			ch.Path = c.Path
		}
		chs = append(chs, ch)
	}

	if err := s.store.SaveRun(ctx, v, chs); err != nil {
		s.logger.Warn("failed to record run in catalog", "video_id", v.ID, "error", err)
		fmt.Fprintf(s.output, "      Warning: catalog not updated: %v\n", err)
		return
	}
	fmt.Fprintf(s.output, "      Recorded %d chapters for %s\n", len(chs), v.ID)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
