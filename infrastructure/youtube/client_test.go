package youtube

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chaptercut/domain/video"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"
)

// mockVideoService is a mock implementation for testing
type mockVideoService struct {
	videos    map[string]*youtube.Video
	failError error
	requested []string
}

func (m *mockVideoService) GetVideo(ctx context.Context, id string) (*youtube.Video, error) {
	m.requested = append(m.requested, id)
	if m.failError != nil {
		return nil, m.failError
	}
	return m.videos[id], nil
}

func newTestClient(t *testing.T, svc VideoService) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), "", WithVideoService(svc))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func testVideo(duration, broadcast string) *youtube.Video {
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                "Conference Talk",
			Description:          "0:00 Intro\n1:30 Chapter Two",
			LiveBroadcastContent: broadcast,
		},
		ContentDetails: &youtube.VideoContentDetails{Duration: duration},
	}
}

func TestClient_Lookup(t *testing.T) {
	svc := &mockVideoService{videos: map[string]*youtube.Video{
		"abcdefghijk": testVideo("PT5M", "none"),
	}}
	client := newTestClient(t, svc)

	meta, err := client.Lookup(context.Background(), "https://youtu.be/abcdefghijk")
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}

	if svc.requested[0] != "abcdefghijk" {
		t.Errorf("requested id %q, want abcdefghijk", svc.requested[0])
	}
	if meta.Title != "Conference Talk" || !strings.HasPrefix(meta.Description, "0:00 Intro") {
		t.Errorf("Lookup() = %+v", meta)
	}
	if meta.URL != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Errorf("URL = %q", meta.URL)
	}
	if meta.Duration != (video.ISODuration{Seconds: 300, Valid: true}) {
		t.Errorf("Duration = %+v, want 300s", meta.Duration)
	}
}

func TestClient_LookupDurations(t *testing.T) {
	tests := []struct {
		name      string
		video     *youtube.Video
		wantValid bool
		wantSecs  int
		wantErr   error
	}{
		{"long video with day", testVideo("P1DT2H", "none"), true, 93600, nil},
		{"live broadcast", testVideo("P0D", "live"), false, 0, nil},
		{"upcoming premiere", testVideo("P0D", "upcoming"), false, 0, nil},
		{"no components", testVideo("PT", "none"), false, 0, nil},
		{"malformed", testVideo("5 minutes", "none"), false, 0, video.ErrMalformedDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVideoService{videos: map[string]*youtube.Video{"abcdefghijk": tt.video}}
			meta, err := newTestClient(t, svc).Lookup(context.Background(), "abcdefghijk")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Lookup() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup() unexpected error: %v", err)
			}
			if meta.Duration.Valid != tt.wantValid || meta.Duration.Seconds != tt.wantSecs {
				t.Errorf("Duration = %+v, want valid=%v seconds=%d", meta.Duration, tt.wantValid, tt.wantSecs)
			}
		})
	}
}

func TestClient_LookupErrors(t *testing.T) {
	tests := []struct {
		name            string
		identifier      string
		svc             *mockVideoService
		wantUnavailable bool
	}{
		{"not found", "abcdefghijk", &mockVideoService{}, true},
		{"api not found", "abcdefghijk", &mockVideoService{failError: &googleapi.Error{Code: 404, Message: "videoNotFound"}}, true},
		{"quota exceeded", "abcdefghijk", &mockVideoService{failError: &googleapi.Error{Code: 403, Message: "quotaExceeded"}}, false},
		{"server error", "abcdefghijk", &mockVideoService{failError: &googleapi.Error{Code: 500}}, false},
		{"not a youtube url", "https://vimeo.com/123", &mockVideoService{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(t, tt.svc).Lookup(context.Background(), tt.identifier)
			if err == nil {
				t.Fatal("Lookup() expected error")
			}
			if got := errors.Is(err, video.ErrSourceUnavailable); got != tt.wantUnavailable {
				t.Errorf("errors.Is(err, ErrSourceUnavailable) = %v, want %v (err: %v)", got, tt.wantUnavailable, err)
			}
		})
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "  "); err == nil {
		t.Error("NewClient() expected error without an API key")
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := saveToken(file, token); err != nil {
		t.Fatalf("saveToken() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	loaded, err := loadToken(file)
	if err != nil {
		t.Fatalf("loadToken() error = %v", err)
	}
	if loaded.RefreshToken != "refresh" || !loaded.Expiry.Equal(token.Expiry) {
		t.Errorf("loadToken() = %+v", loaded)
	}
}
