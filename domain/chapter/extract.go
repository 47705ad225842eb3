package chapter

import (
	"regexp"
	"strings"
)

// clockRegex matches H:MM:SS or M:SS with 1-2 digit leading fields and a two-digit trailing field
var clockRegex = regexp.MustCompile(`\b((?:\d{1,2}:)?\d{1,2}:\d{2})\b`)

// ExtractMarkers scans text for "<clock> [-] <title>" occurrences.
// The title of each marker is the text up to the next clock or the end of input, cut at the
// first line break and trimmed. Empty titles are kept. No clock anywhere yields an empty slice.
func ExtractMarkers(text string) []RawMarker {
	locs := clockRegex.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return []RawMarker{}
	}

	markers := make([]RawMarker, 0, len(locs))
	for i, loc := range locs {
		clock := text[loc[2]:loc[3]]

		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		markers = append(markers, RawMarker{
			Clock: clock,
			Title: cleanTitle(text[loc[1]:end]),
		})
	}
	return markers
}

func cleanTitle(s string) string {
	s = strings.TrimLeft(s, " \t")
	s = strings.TrimPrefix(s, "-")
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
