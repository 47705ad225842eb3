package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
)

// info is the subset of `yt-dlp -J` output we read
type info struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    *float64 `json:"duration"`
	WebpageURL  string   `json:"webpage_url"`
	IsLive      bool     `json:"is_live"`
	Chapters    []struct {
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
		Title     string  `json:"title"`
	} `json:"chapters"`
}

func (c *Client) info(ctx context.Context, identifier string) (*info, error) {
	out, err := c.runner.Output(ctx, c.ytdlpPath, "-J", "--skip-download", "--no-playlist", identifier)
	if err != nil {
		return nil, classify("yt-dlp metadata failed", err)
	}

	var result info
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp JSON output: %w", err)
	}
	return &result, nil
}

// Lookup implements video.MetadataProvider without a Data API key
func (c *Client) Lookup(ctx context.Context, identifier string) (*video.Metadata, error) {
	result, err := c.info(ctx, identifier)
	if err != nil {
		return nil, err
	}

	meta := &video.Metadata{
		ID:          result.ID,
		URL:         result.WebpageURL,
		Title:       result.Title,
		Description: result.Description,
	}
	if meta.URL == "" {
		meta.URL = identifier
	}
	if result.Duration != nil && !result.IsLive && *result.Duration > 0 {
		meta.Duration = video.ISODuration{Seconds: int(*result.Duration), Valid: true}
	}
	return meta, nil
}

// Scrape implements chapter.Scraper from the chapter list YouTube exposes to yt-dlp
func (c *Client) Scrape(ctx context.Context, identifier string) ([]chapter.RawMarker, error) {
	result, err := c.info(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", chapter.ErrScraperUnavailable, err)
	}

	markers := make([]chapter.RawMarker, 0, len(result.Chapters))
	for _, ch := range result.Chapters {
		markers = append(markers, chapter.RawMarker{
			Clock: video.FormatClock(int(ch.StartTime)),
			Title: strings.TrimSpace(ch.Title),
		})
	}
	return markers, nil
}

var (
	_ video.MetadataProvider = (*Client)(nil)
	_ chapter.Scraper        = (*Client)(nil)
)
