package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"chaptercut/domain/catalog"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "catalog.db")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func testChapters() []catalog.Chapter {
	return []catalog.Chapter{
		{Title: "Intro", Start: 0, End: 90, Path: "/out/Talk/Intro.mp4"},
		{Title: "Chapter Two", Start: 90, End: 240},
		{Title: "Outro", Start: 240, End: 300, Path: "/out/Talk/Outro.mp4"},
	}
}

func TestSQLiteStore_SaveAndRead(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	processed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	v := catalog.Video{
		ID:          "abcdefghijk",
		URL:         "https://www.youtube.com/watch?v=abcdefghijk",
		Title:       "Talk",
		Duration:    300,
		OutputDir:   "/out/Talk",
		ProcessedAt: processed,
	}
	if err := store.SaveRun(ctx, v, testChapters()); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != v.ID || got.URL != v.URL || got.Title != v.Title || got.Duration != v.Duration || got.OutputDir != v.OutputDir {
		t.Errorf("List()[0] = %+v, want %+v", got.Video, v)
	}
	if !got.ProcessedAt.Equal(processed) {
		t.Errorf("ProcessedAt = %v, want %v", got.ProcessedAt, processed)
	}
	if got.ChapterCount != 3 {
		t.Errorf("ChapterCount = %d, want 3", got.ChapterCount)
	}

	chapters, err := store.Chapters(ctx, v.ID)
	if err != nil {
		t.Fatalf("Chapters() error = %v", err)
	}
	if !reflect.DeepEqual(chapters, testChapters()) {
		t.Errorf("Chapters() = %+v, want %+v", chapters, testChapters())
	}
}

func TestSQLiteStore_SaveRunReplacesChapters(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	v := catalog.Video{ID: "abc", Title: "Talk", Duration: 300}

	if err := store.SaveRun(ctx, v, testChapters()); err != nil {
		t.Fatalf("first SaveRun() error = %v", err)
	}
	v.Title = "Talk (updated)"
	replacement := []catalog.Chapter{{Title: "Everything", Start: 0, End: 300, Path: "/out/Everything.mp4"}}
	if err := store.SaveRun(ctx, v, replacement); err != nil {
		t.Fatalf("second SaveRun() error = %v", err)
	}

	chapters, err := store.Chapters(ctx, "abc")
	if err != nil {
		t.Fatalf("Chapters() error = %v", err)
	}
	if !reflect.DeepEqual(chapters, replacement) {
		t.Errorf("Chapters() = %+v, want %+v", chapters, replacement)
	}

	entries, _ := store.List(ctx)
	if len(entries) != 1 || entries[0].Title != "Talk (updated)" {
		t.Errorf("List() = %+v", entries)
	}
}

func TestSQLiteStore_ListOrder(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	older := catalog.Video{ID: "old", Title: "Old", ProcessedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := catalog.Video{ID: "new", Title: "New", ProcessedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	for _, v := range []catalog.Video{older, newer} {
		if err := store.SaveRun(ctx, v, nil); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", v.ID, err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "new" || entries[1].ID != "old" {
		t.Errorf("List() order = %+v, want newest first", entries)
	}
	if entries[0].ChapterCount != 0 {
		t.Errorf("ChapterCount = %d, want 0", entries[0].ChapterCount)
	}
}

func TestSQLiteStore_ChaptersNotFound(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.Chapters(context.Background(), "missing")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Chapters() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_RequiresVideoID(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.SaveRun(context.Background(), catalog.Video{Title: "No id"}, nil); err == nil {
		t.Error("SaveRun() expected error without a video id")
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	if err := store.SaveRun(ctx, catalog.Video{ID: "abc", Title: "Talk"}, testChapters()); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	store.Close()

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	chapters, err := reopened.Chapters(ctx, "abc")
	if err != nil {
		t.Fatalf("Chapters() after reopen error = %v", err)
	}
	if len(chapters) != 3 {
		t.Errorf("Chapters() after reopen = %d, want 3", len(chapters))
	}
}
