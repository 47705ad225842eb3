package video

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timestamp
		wantErr bool
		errMsg  string
	}{
		{
			name:  "full clock",
			input: "01:30:45",
			want:  Timestamp{Hours: 1, Minutes: 30, Seconds: 45},
		},
		{
			name:  "single digit hour",
			input: "1:02:03",
			want:  Timestamp{Hours: 1, Minutes: 2, Seconds: 3},
		},
		{
			name:  "minutes and seconds",
			input: "5:09",
			want:  Timestamp{Hours: 0, Minutes: 5, Seconds: 9},
		},
		{
			name:  "all zeros",
			input: "0:00",
			want:  Timestamp{},
		},
		{
			name:  "two part clock past an hour",
			input: "75:00",
			want:  Timestamp{Hours: 1, Minutes: 15, Seconds: 0},
		},
		{
			name:  "surrounding whitespace",
			input: " 12:34 ",
			want:  Timestamp{Minutes: 12, Seconds: 34},
		},
		{
			name:    "single field",
			input:   "45",
			wantErr: true,
			errMsg:  "expected H:MM:SS or MM:SS",
		},
		{
			name:    "four fields",
			input:   "1:02:03:04",
			wantErr: true,
			errMsg:  "expected H:MM:SS or MM:SS",
		},
		{
			name:    "wrong separator - dash",
			input:   "01-30-45",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "non numeric field",
			input:   "1:xx:00",
			wantErr: true,
			errMsg:  "is not a number",
		},
		{
			name:    "minutes too high",
			input:   "01:60:00",
			wantErr: true,
			errMsg:  "minutes must be 0-59",
		},
		{
			name:    "seconds too high",
			input:   "01:30:60",
			wantErr: true,
			errMsg:  "seconds must be 0-59",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error, got nil", tt.input)
					return
				}
				if !errors.Is(err, ErrMalformedClock) {
					t.Errorf("ParseTimestamp(%q) error = %v, want ErrMalformedClock", tt.input, err)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseTimestamp(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got.TotalSeconds() != tt.want.TotalSeconds() {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1:02:03", 3723},
		{"5:09", 309},
		{"0:00", 0},
		{"1:30", 90},
		{"10:00:00", 36000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{90, "00:01:30"},
		{3723, "01:02:03"},
		{359999, "99:59:59"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatClock(tt.seconds); got != tt.want {
				t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatClock_RoundTrip(t *testing.T) {
	for _, seconds := range []int{0, 1, 61, 3599, 3600, 86399} {
		got, err := ParseClock(FormatClock(seconds))
		if err != nil {
			t.Fatalf("ParseClock(FormatClock(%d)) unexpected error: %v", seconds, err)
		}
		if got != seconds {
			t.Errorf("ParseClock(FormatClock(%d)) = %d", seconds, got)
		}
	}
}

func TestTimestamp_String(t *testing.T) {
	tests := []struct {
		timestamp Timestamp
		want      string
	}{
		{Timestamp{0, 0, 0}, "00:00:00"},
		{Timestamp{1, 2, 3}, "01:02:03"},
		{Timestamp{12, 34, 56}, "12:34:56"},
		{Timestamp{99, 59, 59}, "99:59:59"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.timestamp.String(); got != tt.want {
				t.Errorf("Timestamp.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimestamp_TotalSeconds(t *testing.T) {
	tests := []struct {
		timestamp Timestamp
		want      int
	}{
		{Timestamp{0, 0, 0}, 0},
		{Timestamp{0, 0, 1}, 1},
		{Timestamp{0, 1, 0}, 60},
		{Timestamp{1, 0, 0}, 3600},
		{Timestamp{1, 30, 45}, 5445},
	}

	for _, tt := range tests {
		t.Run(tt.timestamp.String(), func(t *testing.T) {
			if got := tt.timestamp.TotalSeconds(); got != tt.want {
				t.Errorf("Timestamp.TotalSeconds() = %d, want %d", got, tt.want)
			}
		})
	}
}
