package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"chaptercut/application/chapters"
	"chaptercut/application/segment"
	"chaptercut/application/split"
	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
	"chaptercut/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	splitURL             string
	splitLocal           bool
	splitIntervalsFile   string
	splitExtractSegments bool
	splitMode            string
	splitResolution      string
	splitOutputRoot      string
	splitResume          bool
	splitDownloadOnly    bool
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Cut a video into one clip per chapter",
	Long: `Look up a video, derive its chapters and extract one clip per chapter.

Chapters come from the timestamps in the video description. When the description
has none, the configured chapter scraper is asked instead. --intervals reads an
explicit interval list from a JSON file. --download-only fetches the video into
<output_root>/<video title>/ and keeps it without cutting anything.

Clips are written to <output_root>/<video title>/<chapter title>.mp4. A clip that
already exists is skipped; --resume reuses the directory of an earlier run.

Examples:
  chaptercut split --url https://www.youtube.com/watch?v=abcdefghijk
  chaptercut split --url abcdefghijk --resolution 480p --resume
  chaptercut split --url ./talk.mp4 --local --intervals intervals.json
  chaptercut split --url abcdefghijk --download-only`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	addSourceFlags(splitCmd, &splitURL, &splitLocal)
	addChapterFlags(splitCmd, &splitIntervalsFile, &splitExtractSegments, &splitMode)
	splitCmd.Flags().StringVar(&splitResolution, "resolution", "", "Preferred download resolution, e.g. 720p (default from config)")
	splitCmd.Flags().StringVar(&splitOutputRoot, "output", "", "Directory that receives the per-video folder (default from config)")
	splitCmd.Flags().BoolVar(&splitResume, "resume", false, "Reuse an existing output directory and skip finished clips")
	splitCmd.Flags().BoolVar(&splitDownloadOnly, "download-only", false, "Download the video into its output directory without cutting it")
	splitCmd.MarkFlagsMutuallyExclusive("download-only", "local")
	splitCmd.MarkFlagsMutuallyExclusive("download-only", "intervals")
	splitCmd.MarkFlagsMutuallyExclusive("download-only", "extract-segments")
}

func addSourceFlags(c *cobra.Command, url *string, local *bool) {
	c.Flags().StringVar(url, "url", "", "Video URL, video id, or local file path with --local (required)")
	c.Flags().BoolVar(local, "local", false, "Treat --url as a local video file")
	c.MarkFlagRequired("url")
}

func addChapterFlags(c *cobra.Command, intervalsFile *string, extractSegments *bool, mode *string) {
	c.Flags().StringVar(intervalsFile, "intervals", "", "JSON file with explicit intervals")
	c.Flags().BoolVar(extractSegments, "extract-segments", false, "Take chapters from the description timestamps")
	c.Flags().StringVar(mode, "mode", "", "Chapter source: description, scraper or literal")
	c.MarkFlagsMutuallyExclusive("intervals", "extract-segments")
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger, _ := logging.WithRunID(GetLogger())
	logger.Debug("starting split", "identifier", splitURL)

	deps, cleanup, err := buildDependencies(ctx, cfg, splitLocal, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	input := SplitInput{
		Identifier:      splitURL,
		Mode:            splitMode,
		IntervalsFile:   splitIntervalsFile,
		ExtractSegments: splitExtractSegments,
		OutputRoot:      firstNonEmpty(splitOutputRoot, cfg.Paths.OutputRoot),
		Resolution:      firstNonEmpty(splitResolution, cfg.Download.Resolution),
		Resume:          splitResume,
		DownloadOnly:    splitDownloadOnly,
	}

	return RunSplitWithDependencies(ctx, deps, input, os.Stdout)
}

// SplitInput contains the input parameters for the split command
type SplitInput struct {
	Identifier      string
	Mode            string
	IntervalsFile   string
	ExtractSegments bool
	OutputRoot      string
	Resolution      string
	Resume          bool
	DownloadOnly    bool // fetch and keep the source, extract nothing
}

// RunSplitWithDependencies runs the split command with injected dependencies (for testing).
// Failed clips are listed but do not make it return an error.
func RunSplitWithDependencies(ctx context.Context, deps Dependencies, input SplitInput, output io.Writer) error {
	if input.DownloadOnly {
		return runDownload(ctx, deps, input, output)
	}

	splitInput, err := input.toServiceInput()
	if err != nil {
		return err
	}

	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	service := newSplitService(deps, output)
	result, err := service.Split(ctx, splitInput)
	if err != nil {
		if result != nil {
			printReport(output, result.Report)
		}
		return err
	}

	printReport(output, result.Report)
	return nil
}

// runDownload fetches the source into its output directory and keeps it
func runDownload(ctx context.Context, deps Dependencies, input SplitInput, output io.Writer) error {
	if input.IntervalsFile != "" || input.ExtractSegments || input.Mode != "" {
		return errors.New("--download-only cannot be combined with chapter options")
	}

	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	result, err := newDownloadService(deps, output).Download(ctx, split.Input{
		Identifier: input.Identifier,
		OutputRoot: input.OutputRoot,
		Resolution: input.Resolution,
		Resume:     input.Resume,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Video downloaded to %s\n", result.OutputDir)
	return nil
}

// toServiceInput resolves the chapter mode flags and reads the interval file
func (in SplitInput) toServiceInput() (split.Input, error) {
	mode, err := chapters.ParseMode(in.Mode)
	if err != nil {
		return split.Input{}, err
	}

	var literal []chapter.LiteralInterval
	switch {
	case in.IntervalsFile != "" && in.ExtractSegments:
		return split.Input{}, errors.New("--intervals and --extract-segments cannot be combined")
	case in.IntervalsFile != "":
		if in.Mode != "" && mode != chapters.ModeLiteral {
			return split.Input{}, fmt.Errorf("--intervals cannot be used with --mode %s", mode)
		}
		literal, err = readIntervalsFile(in.IntervalsFile)
		if err != nil {
			return split.Input{}, err
		}
		mode = chapters.ModeLiteral
	case in.ExtractSegments:
		mode = chapters.ModeDescription
	case mode == chapters.ModeLiteral:
		return split.Input{}, errors.New("--mode literal needs --intervals")
	}

	return split.Input{
		Identifier: in.Identifier,
		Mode:       mode,
		Literal:    literal,
		OutputRoot: in.OutputRoot,
		Resolution: in.Resolution,
		Resume:     in.Resume,
	}, nil
}

func readIntervalsFile(path string) ([]chapter.LiteralInterval, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intervals file: %w", err)
	}
	list, err := chapter.ParseIntervalList(data)
	if err != nil {
		return nil, fmt.Errorf("invalid intervals file %s: %w", filepath.Base(path), err)
	}
	return list, nil
}

// printReport lists every clip with its outcome
func printReport(w io.Writer, report *segment.Report) {
	if report == nil || len(report.Clips) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Clips))
	for i, c := range report.Clips {
		detail := filepath.Base(c.Path)
		if c.Err != nil {
			detail = c.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Interval.Title,
			video.FormatClock(c.Interval.Start),
			video.FormatClock(c.Interval.End),
			string(c.Status),
			detail,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Chapter", "Start", "End", "Status", "File"}, rows, 0))

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "%d of %d chapters failed; rerun the same command to retry them\n", len(failed), len(report.Clips))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
