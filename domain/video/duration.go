package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ISODuration is the result of parsing an ISO-8601 duration.
// Valid is false when the string carried no components at all, which means
// "no duration known" rather than a zero-length video.
type ISODuration struct {
	Seconds int
	Valid   bool
}

// isoDurationRegex matches P[nD]T[nH][nM][nS]; the T section may be absent only when a day component is present
var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration parses durations such as PT1H2M3S, PT5M, PT45S or P1DT2H
func ParseISODuration(s string) (ISODuration, error) {
	s = strings.TrimSpace(s)
	matches := isoDurationRegex.FindStringSubmatch(s)
	danglingT := strings.HasSuffix(s, "T") && s != "PT"
	if matches == nil || s == "P" || danglingT {
		return ISODuration{}, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}

	multipliers := []int{86400, 3600, 60, 1}
	total := 0
	found := false
	for i, m := range multipliers {
		field := matches[i+1]
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return ISODuration{}, fmt.Errorf("%w: %q: %v", ErrMalformedDuration, s, err)
		}
		total += n * m
		found = true
	}

	if !found {
		return ISODuration{}, nil
	}
	return ISODuration{Seconds: total, Valid: true}, nil
}

// String renders the duration as HH:MM:SS, or "unknown"
func (d ISODuration) String() string {
	if !d.Valid {
		return "unknown"
	}
	return FormatClock(d.Seconds)
}
