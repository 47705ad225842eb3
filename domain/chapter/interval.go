package chapter

import (
	"fmt"

	"chaptercut/domain/video"
)

// Interval is a resolved [Start, End) range with a title, ready for extraction
type Interval struct {
	Start int
	End   int
	Title string
}

// Duration returns the interval length in seconds
func (i Interval) Duration() int {
	return i.End - i.Start
}

// String renders the interval as "HH:MM:SS-HH:MM:SS title"
func (i Interval) String() string {
	return fmt.Sprintf("%s-%s %s", video.FormatClock(i.Start), video.FormatClock(i.End), i.Title)
}

// Validate checks that the interval is well formed
func (i Interval) Validate() error {
	if i.Start < 0 {
		return fmt.Errorf("%w: %q starts before the video (%d)", ErrInvalidInterval, i.Title, i.Start)
	}
	if i.End <= i.Start {
		return fmt.Errorf("%w: %q ends at %s, not after its start %s",
			ErrInvalidInterval, i.Title, video.FormatClock(i.End), video.FormatClock(i.Start))
	}
	return nil
}

// BuildIntervals turns ordered markers into contiguous intervals ending at total seconds.
// The whole batch is rejected if offsets do not strictly increase or the last marker does not
// start before total, since either would produce a zero-length or inverted interval.
func BuildIntervals(markers []Marker, total int) ([]Interval, error) {
	if len(markers) == 0 {
		return nil, ErrEmptyMarkerList
	}

	for i := 0; i+1 < len(markers); i++ {
		if markers[i].Offset >= markers[i+1].Offset {
			return nil, fmt.Errorf("%w: %q at %s is followed by %q at %s",
				ErrNonMonotonicMarkers,
				markers[i].Title, video.FormatClock(markers[i].Offset),
				markers[i+1].Title, video.FormatClock(markers[i+1].Offset))
		}
	}

	last := markers[len(markers)-1]
	if total <= last.Offset {
		return nil, fmt.Errorf("%w: %q at %s, video ends at %s",
			ErrIntervalPastDuration, last.Title, video.FormatClock(last.Offset), video.FormatClock(total))
	}

	intervals := make([]Interval, len(markers))
	for i, m := range markers {
		end := total
		if i+1 < len(markers) {
			end = markers[i+1].Offset
		}
		intervals[i] = Interval{Start: m.Offset, End: end, Title: m.Title}
	}
	return intervals, nil
}
