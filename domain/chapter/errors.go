package chapter

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMarkerList is returned when there is nothing to build intervals from
	ErrEmptyMarkerList = errors.New("no chapter markers")

	// ErrNonMonotonicMarkers is returned when marker offsets do not strictly increase
	ErrNonMonotonicMarkers = errors.New("chapter markers are not strictly increasing")

	// ErrIntervalPastDuration is returned when the last marker does not start before the end of the video
	ErrIntervalPastDuration = fmt.Errorf("%w: marker past the end of the video", ErrNonMonotonicMarkers)

	// ErrInvalidInterval is returned for a literal interval whose start is not before its end
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrScraperUnavailable is returned when the fallback chapter scraper cannot produce a list
	ErrScraperUnavailable = errors.New("chapter scraper unavailable")
)
