package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"chaptercut/domain/video"

	"github.com/spf13/cobra"
)

var (
	chaptersURL             string
	chaptersLocal           bool
	chaptersIntervalsFile   string
	chaptersExtractSegments bool
	chaptersMode            string
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Show the chapters a split would produce",
	Long: `Look up a video and print the derived chapter intervals without downloading
or extracting anything.

Example:
  chaptercut chapters --url https://www.youtube.com/watch?v=abcdefghijk`,
	RunE: runChapters,
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
	addSourceFlags(chaptersCmd, &chaptersURL, &chaptersLocal)
	addChapterFlags(chaptersCmd, &chaptersIntervalsFile, &chaptersExtractSegments, &chaptersMode)
}

func runChapters(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	deps, cleanup, err := buildDependencies(ctx, cfg, chaptersLocal, os.Stdout, GetLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	input := SplitInput{
		Identifier:      chaptersURL,
		Mode:            chaptersMode,
		IntervalsFile:   chaptersIntervalsFile,
		ExtractSegments: chaptersExtractSegments,
	}
	return RunChaptersWithDependencies(ctx, deps, input, os.Stdout)
}

// RunChaptersWithDependencies runs the chapters command with injected dependencies (for testing)
func RunChaptersWithDependencies(ctx context.Context, deps Dependencies, input SplitInput, output io.Writer) error {
	splitInput, err := input.toServiceInput()
	if err != nil {
		return err
	}

	preview, err := newSplitService(deps, output).Preview(ctx, splitInput)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Title:    %s\n", preview.Video.Title)
	fmt.Fprintf(output, "Duration: %s\n", preview.Video.Duration)
	fmt.Fprintf(output, "Chapters: %d (from %s)\n\n", len(preview.Intervals), preview.Origin)

	rows := make([][]string, 0, len(preview.Intervals))
	for i, iv := range preview.Intervals {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			video.FormatClock(iv.Start),
			video.FormatClock(iv.End),
			video.FormatClock(iv.Duration()),
			iv.Title,
		})
	}
	fmt.Fprintln(output, renderTable([]string{"#", "Start", "End", "Length", "Title"}, rows, 0))
	return nil
}
