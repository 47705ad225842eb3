package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"chaptercut/domain/video"
)

// DownloadResult describes a fetched source that was kept on disk
type DownloadResult struct {
	Video     *video.Metadata
	OutputDir string
	Source    *video.Source
}

// DownloadService fetches a video into its per-video directory without cutting it
type DownloadService struct {
	metadata video.MetadataProvider
	provider video.SourceProvider
	dirs     DirAllocator
	output   io.Writer
	logger   *slog.Logger
}

// NewDownloadService creates a new download service
func NewDownloadService(
	metadata video.MetadataProvider,
	provider video.SourceProvider,
	dirs DirAllocator,
	output io.Writer,
	logger *slog.Logger,
) *DownloadService {
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DownloadService{
		metadata: metadata,
		provider: provider,
		dirs:     dirs,
		output:   output,
		logger:   logger,
	}
}

// Download looks up the video, allocates its output directory the same way a split
// run does and downloads the source there under the video title. The file is kept.
func (s *DownloadService) Download(ctx context.Context, input Input) (*DownloadResult, error) {
	if strings.TrimSpace(input.Identifier) == "" {
		return nil, errors.New("video URL or path is required")
	}
	if strings.TrimSpace(input.OutputRoot) == "" {
		return nil, errors.New("output root is required")
	}

	fmt.Fprintf(s.output, "[1/2] Looking up video...\n")
	meta, err := s.metadata.Lookup(ctx, input.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up video: %w", err)
	}
	fmt.Fprintf(s.output, "      Title: %s\n", meta.Title)
	fmt.Fprintf(s.output, "      Duration: %s\n\n", meta.Duration)

	name := video.SanitizeFilename(meta.Title)
	outputDir, err := s.dirs.AllocateDir(input.OutputRoot, name, input.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	source := input.Identifier
	if meta.URL != "" {
		source = meta.URL
	}

	fmt.Fprintf(s.output, "[2/2] Downloading into %s\n", outputDir)
	src, err := s.provider.Acquire(ctx, source, outputDir, video.AcquireOptions{
		Resolution: input.Resolution,
		FileName:   name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire source: %w", err)
	}
	src.Owned = false
	s.logger.Info("source downloaded", "path", src.Path, "duration", src.Duration)
	fmt.Fprintf(s.output, "      Saved: %s\n", src.Path)

	return &DownloadResult{Video: meta, OutputDir: outputDir, Source: src}, nil
}
