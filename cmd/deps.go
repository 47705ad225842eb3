package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"chaptercut/application/chapters"
	"chaptercut/application/segment"
	"chaptercut/application/split"
	"chaptercut/domain/catalog"
	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
	"chaptercut/infrastructure/config"
	sqlitecatalog "chaptercut/infrastructure/catalog"
	"chaptercut/infrastructure/ffmpeg"
	"chaptercut/infrastructure/filesystem"
	"chaptercut/infrastructure/logging"
	"chaptercut/infrastructure/scraper"
	"chaptercut/infrastructure/shell"
	"chaptercut/infrastructure/youtube"
	"chaptercut/infrastructure/ytdlp"
)

// FileSystem is the file access a split run needs
type FileSystem interface {
	video.FileSystem
	split.DirAllocator
}

// Dependencies are the adapters a split run is wired from. Store may be nil.
type Dependencies struct {
	Metadata  video.MetadataProvider
	Source    video.SourceProvider
	Extractor video.ClipExtractor
	Scraper   chapter.Scraper
	FS        FileSystem
	Locker    segment.Locker
	Store     catalog.Store
	Logger    *slog.Logger
}

type verifiable interface {
	VerifyInstalled(ctx context.Context) error
}

// verifyTools checks every adapter that wraps an external tool
func verifyTools(ctx context.Context, deps Dependencies) error {
	seen := map[any]bool{}
	for _, dep := range []any{deps.Extractor, deps.Source, deps.Metadata} {
		v, ok := dep.(verifiable)
		if !ok || seen[dep] {
			continue
		}
		seen[dep] = true

		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := v.VerifyInstalled(verifyCtx)
		cancel()
		if shell.IsNotFound(err) {
			return fmt.Errorf("%w (install it or set its path with 'chaptercut config set tools.<name> <path>')", err)
		}
		if err != nil {
			return fmt.Errorf("tool verification failed: %w", err)
		}
	}
	return nil
}

// newSplitService assembles the application services around deps
func newSplitService(deps Dependencies, output io.Writer) *split.Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	segmenter := segment.NewService(
		deps.Source,
		deps.Extractor,
		deps.FS,
		deps.Locker,
		output,
		logging.WithComponent(logger, "segment"),
	)
	chaptersService := chapters.NewService(deps.Scraper, logging.WithComponent(logger, "chapters"))

	return split.NewService(
		deps.Metadata,
		chaptersService,
		segmenter,
		deps.FS,
		deps.Store,
		output,
		logging.WithComponent(logger, "split"),
	)
}

// newDownloadService assembles the download-only service around deps
func newDownloadService(deps Dependencies, output io.Writer) *split.DownloadService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return split.NewDownloadService(deps.Metadata, deps.Source, deps.FS, output, logging.WithComponent(logger, "download"))
}

// buildDependencies wires the production adapters described by cfg. The returned
// cleanup function closes the catalog and must always be called.
func buildDependencies(ctx context.Context, cfg *config.Config, local bool, output io.Writer, logger *slog.Logger) (Dependencies, func(), error) {
	cleanup := func() {}

	deps := Dependencies{
		Extractor: ffmpeg.NewClipper(
			ffmpeg.WithFFmpegPath(cfg.Tools.FFmpeg),
			ffmpeg.WithStreamCopy(cfg.Encode.StreamCopy),
			ffmpeg.WithCodecs(cfg.Encode.VideoCodec, cfg.Encode.AudioCodec),
		),
		FS:     filesystem.NewFS(),
		Locker: filesystem.NewLocker(),
		Logger: logger,
	}

	if local {
		prober := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.Tools.FFprobe))
		deps.Metadata = prober
		deps.Source = prober
		deps.Scraper = prober
	} else {
		opts := []ytdlp.Option{
			ytdlp.WithYtDlpPath(cfg.Tools.YtDlp),
			ytdlp.WithDownloadDir(cfg.Paths.DownloadDir),
		}
		if cfg.Tools.FFmpeg != "ffmpeg" {
			opts = append(opts, ytdlp.WithFFmpegLocation(cfg.Tools.FFmpeg))
		}
		client := ytdlp.NewClient(opts...)
		deps.Source = client
		deps.Metadata = client
		deps.Scraper = client

		if cfg.Scraper.Command != "" {
			deps.Scraper = scraper.NewCommandScraper(cfg.Scraper.Command, cfg.Scraper.Args)
		}

		metadata, err := newYoutubeMetadata(ctx, cfg, output)
		if err != nil {
			return Dependencies{}, cleanup, err
		}
		if metadata != nil {
			deps.Metadata = metadata
		}
	}

	if cfg.Catalog.Enabled {
		store, err := sqlitecatalog.Open(cfg.Catalog.Path, logging.WithComponent(logger, "catalog"))
		if err != nil {
			return Dependencies{}, cleanup, fmt.Errorf("failed to open catalog: %w", err)
		}
		deps.Store = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close catalog", "error", err)
			}
		}
	}

	return deps, cleanup, nil
}

// newYoutubeMetadata returns a Data API client when credentials are configured,
// or nil to keep yt-dlp as the metadata source
func newYoutubeMetadata(ctx context.Context, cfg *config.Config, output io.Writer) (*youtube.Client, error) {
	switch {
	case cfg.Youtube.CredentialsFile != "":
		client, err := youtube.NewClientWithOAuth(ctx, youtube.OAuthConfig{
			CredentialsFile: cfg.Youtube.CredentialsFile,
			TokenFile:       cfg.Youtube.TokenFile,
			Output:          output,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube client: %w", err)
		}
		return client, nil
	case cfg.Youtube.APIKey != "":
		client, err := youtube.NewClient(ctx, cfg.Youtube.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube client: %w", err)
		}
		return client, nil
	default:
		return nil, nil
	}
}
