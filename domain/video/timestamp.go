package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Timestamp represents a position in a video as hours, minutes and seconds
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// clockPartRegex matches a single numeric clock field
var clockPartRegex = regexp.MustCompile(`^\d{1,2}$`)

// NewTimestamp splits a whole number of seconds into a Timestamp
func NewTimestamp(seconds int) Timestamp {
	if seconds < 0 {
		seconds = 0
	}
	return Timestamp{
		Hours:   seconds / 3600,
		Minutes: (seconds % 3600) / 60,
		Seconds: seconds % 60,
	}
}

// ParseTimestamp parses a clock string in H:MM:SS or MM:SS format
func ParseTimestamp(s string) (Timestamp, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Timestamp{}, fmt.Errorf("%w %q: expected H:MM:SS or MM:SS", ErrMalformedClock, s)
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		if !clockPartRegex.MatchString(p) {
			return Timestamp{}, fmt.Errorf("%w %q: field %q is not a number", ErrMalformedClock, s, p)
		}
		values[i], _ = strconv.Atoi(p)
	}

	// Two-part clocks are minutes:seconds
	if len(values) == 2 {
		values = append([]int{0}, values...)
	}

	ts := Timestamp{Hours: values[0], Minutes: values[1], Seconds: values[2]}

	if ts.Seconds > 59 {
		return Timestamp{}, fmt.Errorf("%w %q: seconds must be 0-59", ErrMalformedClock, s)
	}
	// A two-part clock may carry more than 59 minutes ("75:00"), a three-part one may not
	if len(parts) == 3 && ts.Minutes > 59 {
		return Timestamp{}, fmt.Errorf("%w %q: minutes must be 0-59", ErrMalformedClock, s)
	}

	return ts, nil
}

// ParseClock parses a clock string in H:MM:SS or MM:SS format into whole seconds
func ParseClock(s string) (int, error) {
	ts, err := ParseTimestamp(s)
	if err != nil {
		return 0, err
	}
	return ts.TotalSeconds(), nil
}

// FormatClock renders whole seconds as HH:MM:SS
func FormatClock(seconds int) string {
	return NewTimestamp(seconds).String()
}

// String returns the timestamp in HH:MM:SS format
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}
