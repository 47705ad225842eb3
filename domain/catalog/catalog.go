package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a video has never been recorded
var ErrNotFound = errors.New("video not in catalog")

// Video is the persisted record of a processed video
type Video struct {
	ID          string // provider video id, or the file name for local sources
	URL         string
	Title       string
	Duration    int // seconds
	OutputDir   string
	ProcessedAt time.Time
}

// Chapter is one extracted interval of a Video
type Chapter struct {
	Title string
	Start int // seconds
	End   int // seconds
	Path  string
}

// Entry is a catalog listing row
type Entry struct {
	Video
	ChapterCount int
}

// Store defines the interface for persisting completed runs
// This is a port that can be implemented by different infrastructure adapters
type Store interface {
	// SaveRun records v and replaces any chapters previously stored for it
	SaveRun(ctx context.Context, v Video, chapters []Chapter) error

	// List returns every recorded video, most recently processed first
	List(ctx context.Context) ([]Entry, error)

	// Chapters returns the chapters recorded for videoID in playback order
	Chapters(ctx context.Context, videoID string) ([]Chapter, error)
}
