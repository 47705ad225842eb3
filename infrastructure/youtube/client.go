package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chaptercut/domain/video"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// VideoService defines the interface for YouTube Data API operations
// This allows mocking the YouTube API in tests
type VideoService interface {
	GetVideo(ctx context.Context, id string) (*youtube.Video, error)
}

// GoogleVideoService is the production implementation using the YouTube Data API v3
type GoogleVideoService struct {
	service *youtube.Service
}

// GetVideo fetches snippet and content details for one video; nil means not found
func (s *GoogleVideoService) GetVideo(ctx context.Context, id string) (*youtube.Video, error) {
	r, err := s.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(id).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(r.Items) == 0 {
		return nil, nil
	}
	return r.Items[0], nil
}

// Client implements video.MetadataProvider using the YouTube Data API
type Client struct {
	videoService VideoService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithVideoService sets a custom video service (for testing)
func WithVideoService(svc VideoService) ClientOption {
	return func(c *Client) {
		c.videoService = svc
	}
}

// NewClient creates a new YouTube client authenticated with an API key
// If no options are provided, it initializes a real YouTube service
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.videoService == nil {
		if strings.TrimSpace(apiKey) == "" {
			return nil, errors.New("youtube API key is required")
		}
		srv, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("unable to create youtube service: %w", err)
		}
		c.videoService = &GoogleVideoService{service: srv}
	}

	return c, nil
}

// Lookup implements video.MetadataProvider
func (c *Client) Lookup(ctx context.Context, identifier string) (*video.Metadata, error) {
	id, err := video.ParseVideoID(identifier)
	if err != nil {
		return nil, err
	}

	v, err := c.videoService.GetVideo(ctx, id)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", video.ErrSourceUnavailable, err)
		}
		return nil, fmt.Errorf("failed to fetch video %s: %w", id, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: video %s not found or private", video.ErrSourceUnavailable, id)
	}

	meta := &video.Metadata{
		ID:  id,
		URL: WatchURL(id),
	}
	if v.Snippet != nil {
		meta.Title = v.Snippet.Title
		meta.Description = v.Snippet.Description
	}

	// live and upcoming broadcasts report P0D, which is not a usable length
	if v.ContentDetails != nil && !isBroadcast(v.Snippet) {
		d, err := video.ParseISODuration(v.ContentDetails.Duration)
		if err != nil {
			return nil, fmt.Errorf("video %s: %w", id, err)
		}
		meta.Duration = d
	}

	return meta, nil
}

func isBroadcast(s *youtube.VideoSnippet) bool {
	if s == nil {
		return false
	}
	return s.LiveBroadcastContent == "live" || s.LiveBroadcastContent == "upcoming"
}

// WatchURL returns the canonical watch URL of a video id
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// Ensure Client implements video.MetadataProvider
var _ video.MetadataProvider = (*Client)(nil)
