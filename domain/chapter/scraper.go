package chapter

import "context"

// Scraper defines the interface for fetching a chapter list from outside the video description.
// It is only consulted when the description yields no markers.
type Scraper interface {
	// Scrape returns the chapters for identifier in playback order, or an empty slice
	Scrape(ctx context.Context, identifier string) ([]RawMarker, error)
}
