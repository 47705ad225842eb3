package segment

import (
	"testing"

	"chaptercut/domain/chapter"
)

func TestPlanClips(t *testing.T) {
	intervals := []chapter.Interval{
		{Start: 0, End: 10, Title: "Intro"},
		{Start: 10, End: 20, Title: "Chapter: One/Two?"},
		{Start: 20, End: 30, Title: "Intro"},
		{Start: 30, End: 40, Title: "   "},
		{Start: 40, End: 50, Title: ""},
		{Start: 50, End: 60, Title: "Intro_2"},
	}

	got := PlanClips("/out", intervals)

	want := []string{
		"/out/Intro.mp4",
		"/out/Chapter__One_Two_.mp4",
		"/out/Intro_2.mp4",
		"/out/untitled.mp4",
		"/out/untitled_2.mp4",
		"/out/Intro_2_2.mp4",
	}
	if len(got) != len(want) {
		t.Fatalf("PlanClips() returned %d clips, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Path != want[i] {
			t.Errorf("clip %d path = %q, want %q", i, got[i].Path, want[i])
		}
		if got[i].Interval != intervals[i] {
			t.Errorf("clip %d interval = %+v, want %+v", i, got[i].Interval, intervals[i])
		}
	}
}

func TestPlanClips_Deterministic(t *testing.T) {
	intervals := []chapter.Interval{
		{Start: 0, End: 10, Title: "A"},
		{Start: 10, End: 20, Title: "A"},
	}
	first := PlanClips("/out", intervals)
	second := PlanClips("/out", intervals)
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Errorf("clip %d path changed between plans: %q vs %q", i, first[i].Path, second[i].Path)
		}
	}
}

func TestPlanClips_LeadingDots(t *testing.T) {
	intervals := []chapter.Interval{
		{Start: 0, End: 10, Title: ".source"},
		{Start: 10, End: 20, Title: "..hidden"},
		{Start: 20, End: 30, Title: "v1.2"},
	}

	got := PlanClips("/out", intervals)

	want := []string{"/out/_source.mp4", "/out/__hidden.mp4", "/out/v1.2.mp4"}
	for i := range want {
		if got[i].Path != want[i] {
			t.Errorf("clip %d path = %q, want %q", i, got[i].Path, want[i])
		}
	}
}

func TestPartPath(t *testing.T) {
	if got, want := PartPath("/out/Intro.mp4"), "/out/.Intro.part.mp4"; got != want {
		t.Errorf("PartPath() = %q, want %q", got, want)
	}
}

func TestPartPath_NeverAClipPath(t *testing.T) {
	intervals := []chapter.Interval{
		{Start: 0, End: 10, Title: "Intro.part"},
		{Start: 10, End: 20, Title: "Intro"},
		{Start: 20, End: 30, Title: ".Intro.part"},
	}

	plan := PlanClips("/out", intervals)

	clips := make(map[string]bool, len(plan))
	for _, c := range plan {
		clips[c.Path] = true
	}
	for _, c := range plan {
		if part := PartPath(c.Path); clips[part] {
			t.Errorf("part file %q of %q is also a clip path", part, c.Interval.Title)
		}
	}
}
