package chapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"chaptercut/domain/video"
)

// LiteralInterval is a caller-supplied range, possibly open-ended and untitled
type LiteralInterval struct {
	Start   int
	End     int
	OpenEnd bool
	Title   string
}

type literalObject struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Title string          `json:"title"`
}

// ParseIntervalList decodes either [[start,end],...] or [{"start":..,"end":..,"title":..},...].
// Bounds are clock strings or whole seconds; an end of "end", "", null or a missing end is open.
func ParseIntervalList(data []byte) ([]LiteralInterval, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("intervals must be a JSON array: %w", err)
	}

	result := make([]LiteralInterval, 0, len(items))
	for i, item := range items {
		li, err := parseLiteralItem(item)
		if err != nil {
			return nil, fmt.Errorf("interval %d: %w", i+1, err)
		}
		result = append(result, li)
	}
	return result, nil
}

func parseLiteralItem(item json.RawMessage) (LiteralInterval, error) {
	trimmed := bytes.TrimSpace(item)
	var start, end json.RawMessage
	var title string

	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		var pair []json.RawMessage
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return LiteralInterval{}, err
		}
		if len(pair) < 1 || len(pair) > 3 {
			return LiteralInterval{}, fmt.Errorf("expected [start, end] or [start, end, title], got %d elements", len(pair))
		}
		start = pair[0]
		if len(pair) > 1 {
			end = pair[1]
		}
		if len(pair) == 3 {
			if err := json.Unmarshal(pair[2], &title); err != nil {
				return LiteralInterval{}, fmt.Errorf("title: %w", err)
			}
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var obj literalObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return LiteralInterval{}, err
		}
		start, end, title = obj.Start, obj.End, obj.Title
	default:
		return LiteralInterval{}, fmt.Errorf("expected an array or object, got %s", string(trimmed))
	}

	startSec, open, err := parseBound(start)
	if err != nil {
		return LiteralInterval{}, fmt.Errorf("start: %w", err)
	}
	if open {
		return LiteralInterval{}, fmt.Errorf("start is required")
	}
	endSec, openEnd, err := parseBound(end)
	if err != nil {
		return LiteralInterval{}, fmt.Errorf("end: %w", err)
	}

	return LiteralInterval{Start: startSec, End: endSec, OpenEnd: openEnd, Title: title}, nil
}

// parseBound reads a clock string or a whole number of seconds; open reports a missing bound
func parseBound(raw json.RawMessage) (seconds int, open bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, true, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 {
			return 0, false, fmt.Errorf("negative offset %d", n)
		}
		return n, false, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, fmt.Errorf("expected a clock string or seconds, got %s", string(raw))
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "end") {
		return 0, true, nil
	}
	seconds, err = video.ParseClock(s)
	return seconds, false, err
}

// ResolveLiteral resolves open ends against total, fills default "Chapter N" titles
// and validates every interval. Intervals must be listed in ascending order without
// overlapping; gaps between them are allowed.
func ResolveLiteral(list []LiteralInterval, total int) ([]Interval, error) {
	if len(list) == 0 {
		return nil, ErrEmptyMarkerList
	}

	intervals := make([]Interval, 0, len(list))
	for i, li := range list {
		iv := Interval{Start: li.Start, End: li.End, Title: li.Title}
		if li.OpenEnd {
			iv.End = total
		}
		if strings.TrimSpace(iv.Title) == "" {
			iv.Title = fmt.Sprintf("Chapter %d", i+1)
		}
		if err := iv.Validate(); err != nil {
			return nil, err
		}
		if total > 0 && iv.End > total {
			return nil, fmt.Errorf("%w: %q ends at %s, past the end of the video at %s",
				ErrInvalidInterval, iv.Title, video.FormatClock(iv.End), video.FormatClock(total))
		}
		if i > 0 {
			if prev := intervals[i-1]; iv.Start < prev.End {
				return nil, fmt.Errorf("%w: %q starts at %s, before %q ends at %s",
					ErrNonMonotonicMarkers,
					iv.Title, video.FormatClock(iv.Start),
					prev.Title, video.FormatClock(prev.End))
			}
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}
