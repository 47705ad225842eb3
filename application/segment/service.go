package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
)

// ClipExtension is the container used for every produced clip
const ClipExtension = ".mp4"

// Locker serializes runs that target the same output directory
type Locker interface {
	// Lock takes the lock for dir and returns the function that releases it
	Lock(dir string) (unlock func() error, err error)
}

// Status is the outcome of a single interval
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ClipOutcome records what happened to one interval
type ClipOutcome struct {
	Interval chapter.Interval
	Path     string
	Status   Status
	Err      error // set when Status is StatusFailed or StatusCancelled
}

// Report summarizes a segmentation run
type Report struct {
	Source        *video.Source
	Clips         []ClipOutcome
	SourceRemoved bool
}

// Extracted returns the clips produced by this run
func (r *Report) Extracted() []ClipOutcome { return r.filter(StatusExtracted) }

// Skipped returns the clips that already existed
func (r *Report) Skipped() []ClipOutcome { return r.filter(StatusSkipped) }

// Failed returns the clips that could not be produced
func (r *Report) Failed() []ClipOutcome { return r.filter(StatusFailed) }

func (r *Report) filter(status Status) []ClipOutcome {
	var out []ClipOutcome
	for _, c := range r.Clips {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// Request is the input of a segmentation run
type Request struct {
	Identifier string // URL, video id or local path handed to the SourceProvider
	OutputDir  string
	Intervals  []chapter.Interval
	Acquire    video.AcquireOptions
}

// Service cuts one source video into one clip per interval
type Service struct {
	provider  video.SourceProvider
	extractor video.ClipExtractor
	fs        video.FileSystem
	locker    Locker
	output    io.Writer
	logger    *slog.Logger
}

// NewService creates a new segmentation service
func NewService(
	provider video.SourceProvider,
	extractor video.ClipExtractor,
	fs video.FileSystem,
	locker Locker,
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
		provider:  provider,
		extractor: extractor,
		fs:        fs,
		locker:    locker,
		output:    output,
		logger:    logger,
	}
}

// Run acquires the source once, extracts every interval in order and removes the
// source afterwards when the provider fetched it. Per-interval failures are recorded
// in the report and do not make Run fail.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	plan := PlanClips(req.OutputDir, req.Intervals)

	if s.locker != nil {
		unlock, err := s.locker.Lock(req.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to lock output directory: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				s.logger.Warn("failed to release output directory lock", "dir", req.OutputDir, "error", err)
			}
		}()
	}

	src, err := s.provider.Acquire(ctx, req.Identifier, req.OutputDir, req.Acquire)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire source: %w", err)
	}
	s.logger.Info("source ready", "path", src.Path, "owned", src.Owned, "duration", src.Duration)

	report := &Report{Source: src, Clips: make([]ClipOutcome, 0, len(plan))}
	runErr := s.extractAll(ctx, src, plan, report)

	if src.Owned {
		if err := s.fs.Remove(src.Path); err != nil {
			s.logger.Warn("failed to remove downloaded source", "path", src.Path, "error", err)
		} else {
			report.SourceRemoved = true
			s.logger.Debug("removed downloaded source", "path", src.Path)
		}
	}

	fmt.Fprintf(s.output, "Done: %d extracted, %d skipped, %d failed\n",
		len(report.Extracted()), len(report.Skipped()), len(report.Failed()))

	return report, runErr
}

func (s *Service) extractAll(ctx context.Context, src *video.Source, plan []PlannedClip, report *Report) error {
	total := len(plan)
	for i, clip := range plan {
		if err := ctx.Err(); err != nil {
			for _, rest := range plan[i:] {
				report.Clips = append(report.Clips, ClipOutcome{
					Interval: rest.Interval, Path: rest.Path, Status: StatusCancelled, Err: err,
				})
			}
			return fmt.Errorf("segmentation interrupted: %w", err)
		}

		fmt.Fprintf(s.output, "[%d/%d] %s\n", i+1, total, clip.Interval)

		if clip.Path == filepath.Clean(src.Path) {
			err := fmt.Errorf("%w: %q would overwrite the source file %s",
				video.ErrExtractionFailed, clip.Interval.Title, filepath.Base(src.Path))
			fmt.Fprintf(s.output, "      Failed: %v\n", err)
			report.Clips = append(report.Clips, ClipOutcome{Interval: clip.Interval, Path: clip.Path, Status: StatusFailed, Err: err})
			continue
		}

		if s.fs.Exists(clip.Path) {
			fmt.Fprintf(s.output, "      Skipped: %s already exists\n", filepath.Base(clip.Path))
			report.Clips = append(report.Clips, ClipOutcome{Interval: clip.Interval, Path: clip.Path, Status: StatusSkipped})
			continue
		}

		if err := s.extractOne(ctx, src, clip); err != nil {
			s.logger.Error("clip extraction failed",
				"title", clip.Interval.Title,
				"start", clip.Interval.Start,
				"end", clip.Interval.End,
				"error", err)
			fmt.Fprintf(s.output, "      Failed: %v\n", err)
			report.Clips = append(report.Clips, ClipOutcome{
				Interval: clip.Interval,
				Path:     clip.Path,
				Status:   StatusFailed,
				Err:      fmt.Errorf("%w: %q: %w", video.ErrExtractionFailed, clip.Interval.Title, err),
			})
			continue
		}

		fmt.Fprintf(s.output, "      Created: %s\n", clip.Path)
		report.Clips = append(report.Clips, ClipOutcome{Interval: clip.Interval, Path: clip.Path, Status: StatusExtracted})
	}
	return nil
}

// extractOne writes into a part file and renames it into place, so an interrupted run
// never leaves a truncated clip under the final name
func (s *Service) extractOne(ctx context.Context, src *video.Source, clip PlannedClip) error {
	part := PartPath(clip.Path)
	req := video.ClipRequest{
		SourcePath: src.Path,
		Start:      clip.Interval.Start,
		End:        clip.Interval.End,
		OpenEnd:    src.Duration > 0 && clip.Interval.End >= src.Duration,
		OutputPath: part,
	}

	err := s.extractor.Extract(ctx, req)
	if err == nil {
		err = s.fs.Rename(part, clip.Path)
	}
	if err != nil && s.fs.Exists(part) {
		if rmErr := s.fs.Remove(part); rmErr != nil {
			s.logger.Warn("failed to remove partial clip", "path", part, "error", rmErr)
		}
	}
	return err
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.Identifier) == "" {
		return errors.New("source identifier is required")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	if len(req.Intervals) == 0 {
		return chapter.ErrEmptyMarkerList
	}
	for _, iv := range req.Intervals {
		if err := iv.Validate(); err != nil {
			return err
		}
	}
	return nil
}
