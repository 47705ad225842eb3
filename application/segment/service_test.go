package segment

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
)

// --- Mock implementations for testing ---

// mockProvider implements video.SourceProvider for testing
type mockProvider struct {
	source *video.Source
	err    error
	calls  int
}

func (m *mockProvider) Acquire(ctx context.Context, identifier, outputDir string, opts video.AcquireOptions) (*video.Source, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.source, nil
}

// mockFS implements video.FileSystem over an in-memory set of paths
type mockFS struct {
	files     map[string]bool
	removed   []string
	renameErr error
}

func newMockFS(paths ...string) *mockFS {
	fs := &mockFS{files: make(map[string]bool)}
	for _, p := range paths {
		fs.files[p] = true
	}
	return fs
}

func (m *mockFS) Exists(path string) bool {
	return m.files[path]
}

func (m *mockFS) Remove(path string) error {
	if !m.files[path] {
		return errors.New("no such file")
	}
	delete(m.files, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockFS) Rename(oldPath, newPath string) error {
	if m.renameErr != nil {
		return m.renameErr
	}
	if !m.files[oldPath] {
		return errors.New("no such file")
	}
	delete(m.files, oldPath)
	m.files[newPath] = true
	return nil
}

// mockExtractor implements video.ClipExtractor, writing into mockFS
type mockExtractor struct {
	fs        *mockFS
	requests  []video.ClipRequest
	failAt    map[int]error // keyed by interval start
	onExtract func(req video.ClipRequest)
}

func (m *mockExtractor) Extract(ctx context.Context, req video.ClipRequest) error {
	m.requests = append(m.requests, req)
	if m.onExtract != nil {
		m.onExtract(req)
	}
	// ffmpeg leaves a partial file behind when it dies mid-encode
	m.fs.files[req.OutputPath] = true
	if err, ok := m.failAt[req.Start]; ok {
		return err
	}
	return nil
}

// mockLocker implements Locker for testing
type mockLocker struct {
	err      error
	locked   []string
	released int
}

func (m *mockLocker) Lock(dir string) (func() error, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.locked = append(m.locked, dir)
	return func() error {
		m.released++
		return nil
	}, nil
}

// --- Helper functions ---

const (
	testDir    = "/out/My Video"
	testSource = "/out/My Video/.source.mp4"
)

func threeIntervals() []chapter.Interval {
	return []chapter.Interval{
		{Start: 0, End: 90, Title: "Intro"},
		{Start: 90, End: 240, Title: "Chapter Two"},
		{Start: 240, End: 300, Title: "Outro"},
	}
}

func testRequest(intervals []chapter.Interval) Request {
	return Request{
		Identifier: "dQw4w9WgXcQ",
		OutputDir:  testDir,
		Intervals:  intervals,
		Acquire:    video.AcquireOptions{Resolution: "720p"},
	}
}

type fixture struct {
	provider  *mockProvider
	fs        *mockFS
	extractor *mockExtractor
	locker    *mockLocker
	output    *bytes.Buffer
	service   *Service
}

func newFixture(owned bool) *fixture {
	fs := newMockFS(testSource)
	f := &fixture{
		provider: &mockProvider{source: &video.Source{Path: testSource, Duration: 300, Owned: owned}},
		fs:       fs,
		locker:   &mockLocker{},
		output:   &bytes.Buffer{},
	}
	f.extractor = &mockExtractor{fs: fs, failAt: make(map[int]error)}
	f.service = NewService(f.provider, f.extractor, f.fs, f.locker, f.output, nil)
	return f
}

func clipPath(name string) string {
	return filepath.Join(testDir, name+".mp4")
}

// --- Tests ---

func TestRun_ExtractsEveryInterval(t *testing.T) {
	f := newFixture(true)

	report, err := f.service.Run(context.Background(), testRequest(threeIntervals()))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if got := len(report.Extracted()); got != 3 {
		t.Fatalf("extracted %d clips, want 3", got)
	}
	for _, name := range []string{"Intro", "Chapter Two", "Outro"} {
		if !f.fs.Exists(clipPath(name)) {
			t.Errorf("expected clip %s to exist", clipPath(name))
		}
		if f.fs.Exists(PartPath(clipPath(name))) {
			t.Errorf("part file for %s left behind", name)
		}
	}

	if len(f.extractor.requests) != 3 {
		t.Fatalf("extractor called %d times, want 3", len(f.extractor.requests))
	}
	first := f.extractor.requests[0]
	if first.SourcePath != testSource || first.Start != 0 || first.End != 90 || first.OpenEnd {
		t.Errorf("first request = %+v", first)
	}
	if first.OutputPath != PartPath(clipPath("Intro")) {
		t.Errorf("first request writes to %q, want part file", first.OutputPath)
	}
	if last := f.extractor.requests[2]; !last.OpenEnd {
		t.Errorf("last interval reaches the end of the source and should be open ended: %+v", last)
	}

	if !report.SourceRemoved || f.fs.Exists(testSource) {
		t.Error("owned source should be removed after the run")
	}
	if len(f.locker.locked) != 1 || f.locker.locked[0] != testDir || f.locker.released != 1 {
		t.Errorf("lock usage = %v released %d", f.locker.locked, f.locker.released)
	}
	if !strings.Contains(f.output.String(), "Done: 3 extracted, 0 skipped, 0 failed") {
		t.Errorf("unexpected output:\n%s", f.output.String())
	}
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	f := newFixture(false)

	if _, err := f.service.Run(context.Background(), testRequest(threeIntervals())); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	callsAfterFirst := len(f.extractor.requests)

	report, err := f.service.Run(context.Background(), testRequest(threeIntervals()))
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}

	if len(f.extractor.requests) != callsAfterFirst {
		t.Errorf("second run invoked the extractor %d more times", len(f.extractor.requests)-callsAfterFirst)
	}
	if len(report.Extracted()) != 0 || len(report.Skipped()) != 3 {
		t.Errorf("second run: extracted=%d skipped=%d, want 0 and 3", len(report.Extracted()), len(report.Skipped()))
	}
}

func TestRun_PartialFailure(t *testing.T) {
	f := newFixture(true)
	f.extractor.failAt[90] = errors.New("ffmpeg exited with status 1")

	report, err := f.service.Run(context.Background(), testRequest(threeIntervals()))
	if err != nil {
		t.Fatalf("Run() should not fail on a single interval: %v", err)
	}

	if got := len(report.Extracted()); got != 2 {
		t.Errorf("extracted %d clips, want 2", got)
	}
	failed := report.Failed()
	if len(failed) != 1 {
		t.Fatalf("failed %d clips, want 1", len(failed))
	}
	if failed[0].Interval.Title != "Chapter Two" {
		t.Errorf("failed clip = %q, want Chapter Two", failed[0].Interval.Title)
	}
	if !errors.Is(failed[0].Err, video.ErrExtractionFailed) {
		t.Errorf("failure error = %v, want ErrExtractionFailed", failed[0].Err)
	}

	if f.fs.Exists(clipPath("Chapter Two")) || f.fs.Exists(PartPath(clipPath("Chapter Two"))) {
		t.Error("failed interval left a file behind")
	}
	if !f.fs.Exists(clipPath("Outro")) {
		t.Error("interval after the failure should still be extracted")
	}
	if f.fs.Exists(testSource) {
		t.Error("owned source should be removed even when an interval failed")
	}
}

func TestRun_RenameFailureCountsAsFailed(t *testing.T) {
	f := newFixture(false)
	f.fs.renameErr = errors.New("cross-device link")

	report, err := f.service.Run(context.Background(), testRequest(threeIntervals()[:1]))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if len(report.Failed()) != 1 {
		t.Fatalf("failed %d clips, want 1", len(report.Failed()))
	}
	if f.fs.Exists(PartPath(clipPath("Intro"))) {
		t.Error("part file should be removed after a failed rename")
	}
}

func TestRun_UnownedSourceIsKept(t *testing.T) {
	f := newFixture(false)

	report, err := f.service.Run(context.Background(), testRequest(threeIntervals()))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if report.SourceRemoved || !f.fs.Exists(testSource) {
		t.Error("caller-supplied source must never be removed")
	}
}

func TestRun_AcquireFailure(t *testing.T) {
	f := newFixture(true)
	f.provider.err = errors.Join(video.ErrSourceUnavailable, errors.New("video is age restricted"))

	report, err := f.service.Run(context.Background(), testRequest(threeIntervals()))
	if !errors.Is(err, video.ErrSourceUnavailable) {
		t.Fatalf("Run() error = %v, want ErrSourceUnavailable", err)
	}
	if report != nil {
		t.Errorf("Run() returned a report alongside an acquisition error: %+v", report)
	}
	if len(f.extractor.requests) != 0 {
		t.Error("extractor should not be called when acquisition fails")
	}
	if len(f.fs.removed) != 0 {
		t.Errorf("nothing should be removed when acquisition fails, removed %v", f.fs.removed)
	}
	if f.locker.released != 1 {
		t.Error("lock should be released after a failed acquisition")
	}
}

func TestRun_ValidationPrecedesAcquisition(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
		errText string
	}{
		{
			name:    "no intervals",
			req:     testRequest(nil),
			wantErr: chapter.ErrEmptyMarkerList,
		},
		{
			name:    "inverted interval",
			req:     testRequest([]chapter.Interval{{Start: 50, End: 10, Title: "Backwards"}}),
			wantErr: chapter.ErrInvalidInterval,
		},
		{
			name:    "missing identifier",
			req:     Request{OutputDir: testDir, Intervals: threeIntervals()},
			errText: "source identifier is required",
		},
		{
			name:    "missing output directory",
			req:     Request{Identifier: "abc", Intervals: threeIntervals()},
			errText: "output directory is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)

			_, err := f.service.Run(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Run() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Run() error = %v, want containing %q", err, tt.errText)
			}
			if f.provider.calls != 0 {
				t.Error("source must not be acquired when validation fails")
			}
			if len(f.locker.locked) != 0 {
				t.Error("lock must not be taken when validation fails")
			}
		})
	}
}

func TestRun_LockFailure(t *testing.T) {
	f := newFixture(true)
	f.locker.err = errors.New("output directory is locked by another run")

	_, err := f.service.Run(context.Background(), testRequest(threeIntervals()))
	if err == nil || !strings.Contains(err.Error(), "locked by another run") {
		t.Fatalf("Run() error = %v, want lock error", err)
	}
	if f.provider.calls != 0 {
		t.Error("source must not be acquired without the lock")
	}
}

func TestRun_CancellationStillCleansUp(t *testing.T) {
	f := newFixture(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.extractor.onExtract = func(req video.ClipRequest) { cancel() }

	report, err := f.service.Run(ctx, testRequest(threeIntervals()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if report == nil {
		t.Fatal("Run() should return the partial report on cancellation")
	}

	if len(f.extractor.requests) != 1 {
		t.Errorf("extractor called %d times, want 1", len(f.extractor.requests))
	}
	var cancelled int
	for _, c := range report.Clips {
		if c.Status == StatusCancelled {
			cancelled++
		}
	}
	if cancelled != 2 {
		t.Errorf("cancelled %d clips, want 2", cancelled)
	}
	if !report.SourceRemoved {
		t.Error("owned source should be removed after cancellation")
	}
}

func TestRun_DuplicateTitles(t *testing.T) {
	f := newFixture(false)
	intervals := []chapter.Interval{
		{Start: 0, End: 10, Title: "Q&A"},
		{Start: 10, End: 20, Title: "Q/A"},
		{Start: 20, End: 30, Title: "Q_A"},
	}

	report, err := f.service.Run(context.Background(), testRequest(intervals))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	want := []string{clipPath("Q_A"), clipPath("Q_A_2"), clipPath("Q_A_3")}
	for i, c := range report.Clips {
		if c.Path != want[i] {
			t.Errorf("clip %d path = %q, want %q", i, c.Path, want[i])
		}
		if c.Status != StatusExtracted {
			t.Errorf("clip %d status = %s, want extracted", i, c.Status)
		}
	}
}

func TestRun_TitleMatchingAnotherPartFile(t *testing.T) {
	f := newFixture(true)
	intervals := []chapter.Interval{
		{Start: 0, End: 100, Title: "Intro.part"},
		{Start: 100, End: 200, Title: "Intro"},
	}

	report, err := f.service.Run(context.Background(), testRequest(intervals))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if got := len(report.Extracted()); got != 2 {
		t.Fatalf("extracted %d clips, want 2", got)
	}
	for _, name := range []string{"Intro.part", "Intro"} {
		if !f.fs.Exists(clipPath(name)) {
			t.Errorf("expected clip %s to exist", name)
		}
	}
}

func TestRun_ClipNeverReplacesTheSource(t *testing.T) {
	f := newFixture(false)
	src := clipPath("Talk")
	f.fs.files[src] = true
	f.provider.source = &video.Source{Path: src, Duration: 300}
	intervals := []chapter.Interval{
		{Start: 0, End: 100, Title: "Talk"},
		{Start: 100, End: 300, Title: "Questions"},
	}

	report, err := f.service.Run(context.Background(), testRequest(intervals))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	failed := report.Failed()
	if len(failed) != 1 || failed[0].Interval.Title != "Talk" {
		t.Fatalf("failed clips = %+v, want only Talk", failed)
	}
	if !errors.Is(failed[0].Err, video.ErrExtractionFailed) {
		t.Errorf("failure error = %v, want ErrExtractionFailed", failed[0].Err)
	}
	if len(report.Skipped()) != 0 {
		t.Errorf("source file was counted as a finished clip: %+v", report.Skipped())
	}
	if !f.fs.Exists(src) {
		t.Error("source file should be kept")
	}
	if len(report.Extracted()) != 1 {
		t.Errorf("extracted %d clips, want 1", len(report.Extracted()))
	}
}
