package chapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
)

// Mode selects where chapter markers come from
type Mode string

const (
	// ModeDescription parses the description and falls back to the scraper when it has no timestamps
	ModeDescription Mode = "description"
	// ModeScraper asks the scraper only
	ModeScraper Mode = "scraper"
	// ModeLiteral uses a caller-supplied interval list
	ModeLiteral Mode = "literal"
)

// ParseMode validates a mode name, defaulting to ModeDescription
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDescription:
		return ModeDescription, nil
	case ModeScraper:
		return ModeScraper, nil
	case ModeLiteral:
		return ModeLiteral, nil
	default:
		return "", fmt.Errorf("unknown chapter mode %q (use description, scraper or literal)", s)
	}
}

// Input is what the service needs to derive intervals for one video
type Input struct {
	Mode        Mode
	Identifier  string // passed to the scraper
	Description string
	Literal     []chapter.LiteralInterval
	Duration    video.ISODuration
}

// Result holds the derived intervals and the source that produced them
type Result struct {
	Intervals []chapter.Interval
	Origin    string // "description", "scraper" or "literal"
}

// markerSource produces raw markers; description text and the scraper are interchangeable
type markerSource struct {
	name  string
	fetch func(ctx context.Context) ([]chapter.RawMarker, error)
}

// Service derives chapter intervals from whichever marker source the mode selects
type Service struct {
	scraper chapter.Scraper
	logger  *slog.Logger
}

// NewService creates a new chapters service; scraper may be nil
func NewService(scraper chapter.Scraper, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{scraper: scraper, logger: logger}
}

// Resolve returns the intervals for in. Every error is raised before anything is
// downloaded or encoded.
func (s *Service) Resolve(ctx context.Context, in Input) (*Result, error) {
	if in.Mode == ModeLiteral {
		return s.resolveLiteral(in)
	}

	if !in.Duration.Valid {
		return nil, video.ErrDurationUnknown
	}

	sources := []markerSource{s.descriptionSource(in.Description), s.scraperSource(in.Identifier)}
	if in.Mode == ModeScraper {
		sources = sources[1:]
	}

	raw, origin, err := s.firstNonEmpty(ctx, sources)
	if err != nil {
		return nil, err
	}

	markers, err := chapter.ToMarkers(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s marker: %w", origin, err)
	}

	intervals, err := chapter.BuildIntervals(markers, in.Duration.Seconds)
	if err != nil {
		return nil, err
	}
	return &Result{Intervals: intervals, Origin: origin}, nil
}

func (s *Service) firstNonEmpty(ctx context.Context, sources []markerSource) ([]chapter.RawMarker, string, error) {
	var lastErr error
	for _, src := range sources {
		raw, err := src.fetch(ctx)
		if err != nil {
			s.logger.Warn("marker source failed", "source", src.name, "error", err)
			lastErr = err
			continue
		}
		if len(raw) > 0 {
			s.logger.Debug("markers found", "source", src.name, "count", len(raw))
			return raw, src.name, nil
		}
		s.logger.Debug("marker source returned nothing", "source", src.name)
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("%w: %w", chapter.ErrEmptyMarkerList, lastErr)
	}
	return nil, "", chapter.ErrEmptyMarkerList
}

func (s *Service) descriptionSource(description string) markerSource {
	return markerSource{
		name: string(ModeDescription),
		fetch: func(ctx context.Context) ([]chapter.RawMarker, error) {
			return chapter.ExtractMarkers(description), nil
		},
	}
}

func (s *Service) scraperSource(identifier string) markerSource {
	return markerSource{
		name: string(ModeScraper),
		fetch: func(ctx context.Context) ([]chapter.RawMarker, error) {
			if s.scraper == nil {
				return nil, chapter.ErrScraperUnavailable
			}
			raw, err := s.scraper.Scrape(ctx, identifier)
			if err != nil && !errors.Is(err, chapter.ErrScraperUnavailable) {
				err = fmt.Errorf("%w: %w", chapter.ErrScraperUnavailable, err)
			}
			return raw, err
		},
	}
}

func (s *Service) resolveLiteral(in Input) (*Result, error) {
	total := 0
	if in.Duration.Valid {
		total = in.Duration.Seconds
	} else {
		for _, li := range in.Literal {
			if li.OpenEnd {
				return nil, fmt.Errorf("open-ended interval needs the video length: %w", video.ErrDurationUnknown)
			}
		}
	}

	intervals, err := chapter.ResolveLiteral(in.Literal, total)
	if err != nil {
		return nil, err
	}
	return &Result{Intervals: intervals, Origin: string(ModeLiteral)}, nil
}
