package chapter

import (
	"fmt"

	"chaptercut/domain/video"
)

// RawMarker is an unparsed (clock, title) pair as found in a description or returned by a scraper
type RawMarker struct {
	Clock string `json:"timestamp"`
	Title string `json:"title"`
}

// Marker denotes the start of a named segment
type Marker struct {
	Offset int // seconds from the start of the video
	Title  string
}

// NewMarker parses the clock of a raw marker
func NewMarker(raw RawMarker) (Marker, error) {
	offset, err := video.ParseClock(raw.Clock)
	if err != nil {
		return Marker{}, fmt.Errorf("marker %q: %w", raw.Title, err)
	}
	return Marker{Offset: offset, Title: raw.Title}, nil
}

// ToMarkers parses every raw marker, preserving order
func ToMarkers(raw []RawMarker) ([]Marker, error) {
	markers := make([]Marker, 0, len(raw))
	for _, r := range raw {
		m, err := NewMarker(r)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}
