package video

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// videoIDRegex matches a bare YouTube video id
var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID extracts the YouTube video id from a watch, short, embed or youtu.be URL,
// or returns a bare id unchanged
func ParseVideoID(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if videoIDRegex.MatchString(identifier) {
		return identifier, nil
	}

	u, err := url.Parse(identifier)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("not a YouTube URL or video id: %q", identifier)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
		} else if len(segments) == 2 && (segments[0] == "shorts" || segments[0] == "embed" || segments[0] == "live") {
			id = segments[1]
		}
	}

	if !videoIDRegex.MatchString(id) {
		return "", fmt.Errorf("no video id found in %q", identifier)
	}
	return id, nil
}
