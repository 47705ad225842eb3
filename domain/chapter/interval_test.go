package chapter

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildIntervals(t *testing.T) {
	markers := []Marker{
		{Offset: 0, Title: "Intro"},
		{Offset: 90, Title: "Chapter Two"},
		{Offset: 240, Title: "Outro"},
	}

	got, err := BuildIntervals(markers, 300)
	if err != nil {
		t.Fatalf("BuildIntervals() unexpected error: %v", err)
	}

	want := []Interval{
		{Start: 0, End: 90, Title: "Intro"},
		{Start: 90, End: 240, Title: "Chapter Two"},
		{Start: 240, End: 300, Title: "Outro"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildIntervals() = %+v, want %+v", got, want)
	}

	for i := 0; i+1 < len(got); i++ {
		if got[i].End != got[i+1].Start {
			t.Errorf("interval %d ends at %d but interval %d starts at %d", i, got[i].End, i+1, got[i+1].Start)
		}
	}
	if got[len(got)-1].End != 300 {
		t.Errorf("last interval ends at %d, want total duration 300", got[len(got)-1].End)
	}
}

func TestBuildIntervals_SingleMarker(t *testing.T) {
	got, err := BuildIntervals([]Marker{{Offset: 30, Title: "Only"}}, 31)
	if err != nil {
		t.Fatalf("BuildIntervals() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != (Interval{Start: 30, End: 31, Title: "Only"}) {
		t.Errorf("BuildIntervals() = %+v", got)
	}
}

func TestBuildIntervals_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		markers []Marker
		total   int
		wantErr error
	}{
		{
			name:    "no markers",
			markers: nil,
			total:   100,
			wantErr: ErrEmptyMarkerList,
		},
		{
			name:    "decreasing offsets",
			markers: []Marker{{Offset: 10, Title: "A"}, {Offset: 5, Title: "B"}},
			total:   100,
			wantErr: ErrNonMonotonicMarkers,
		},
		{
			name:    "duplicate offsets",
			markers: []Marker{{Offset: 10, Title: "A"}, {Offset: 10, Title: "B"}},
			total:   100,
			wantErr: ErrNonMonotonicMarkers,
		},
		{
			name:    "last marker after the end",
			markers: []Marker{{Offset: 100, Title: "A"}},
			total:   50,
			wantErr: ErrNonMonotonicMarkers,
		},
		{
			name:    "last marker exactly at the end",
			markers: []Marker{{Offset: 0, Title: "A"}, {Offset: 50, Title: "B"}},
			total:   50,
			wantErr: ErrIntervalPastDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildIntervals(tt.markers, tt.total)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BuildIntervals() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("BuildIntervals() returned %+v alongside an error", got)
			}
		})
	}
}

func TestInterval_Validate(t *testing.T) {
	tests := []struct {
		name     string
		interval Interval
		wantErr  bool
	}{
		{"valid", Interval{Start: 0, End: 10, Title: "a"}, false},
		{"zero length", Interval{Start: 10, End: 10, Title: "a"}, true},
		{"inverted", Interval{Start: 10, End: 5, Title: "a"}, true},
		{"negative start", Interval{Start: -1, End: 5, Title: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.interval.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("Validate() error = %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestInterval_String(t *testing.T) {
	iv := Interval{Start: 90, End: 240, Title: "Chapter Two"}
	if got, want := iv.String(), "00:01:30-00:04:00 Chapter Two"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if iv.Duration() != 150 {
		t.Errorf("Duration() = %d, want 150", iv.Duration())
	}
}
