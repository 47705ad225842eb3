package video

import "errors"

var (
	// ErrMalformedDuration is returned when an ISO-8601 duration string has the wrong shape
	ErrMalformedDuration = errors.New("malformed duration")

	// ErrMalformedClock is returned when a clock string is not H:MM:SS or MM:SS
	ErrMalformedClock = errors.New("malformed clock")

	// ErrDurationUnknown is returned when the total length of a video cannot be established
	ErrDurationUnknown = errors.New("video duration unknown")

	// ErrSourceUnavailable is returned when a source provider cannot materialize the video
	// (private, removed, age or region restricted)
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrExtractionFailed marks a single clip that could not be produced
	ErrExtractionFailed = errors.New("clip extraction failed")
)
