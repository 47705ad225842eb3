package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunBatch(t *testing.T) {
	f := newSplitFixture(t, testDescription)
	list := "# weekly talks\nabcdefghijk\n\n"
	var out bytes.Buffer

	err := RunBatchWithDependencies(context.Background(), f.deps, strings.NewReader(list), f.input(), &out)
	if err != nil {
		t.Fatalf("RunBatchWithDependencies() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "OK      abcdefghijk: 3 extracted, 0 skipped, 0 failed") {
		t.Errorf("output missing per-video summary:\n%s", out.String())
	}
}

func TestRunBatch_ReportsFailures(t *testing.T) {
	f := newSplitFixture(t, "no timestamps")
	var out bytes.Buffer

	err := RunBatchWithDependencies(context.Background(), f.deps, strings.NewReader("abcdefghijk\nabcdefghijk\n"), f.input(), &out)
	if !errors.Is(err, ErrBatchIncomplete) {
		t.Fatalf("error = %v, want ErrBatchIncomplete", err)
	}
	if strings.Count(out.String(), "FAILED") != 2 {
		t.Errorf("both entries should be reported as failed:\n%s", out.String())
	}
}

func TestRunBatch_EmptyList(t *testing.T) {
	f := newSplitFixture(t, testDescription)
	err := RunBatchWithDependencies(context.Background(), f.deps, strings.NewReader("# nothing\n"), f.input(), &bytes.Buffer{})
	if err == nil {
		t.Error("an empty URL list should be rejected")
	}
}
