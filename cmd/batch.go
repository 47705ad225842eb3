package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"chaptercut/application/split"
	"chaptercut/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	batchURLsFile   string
	batchMode       string
	batchResolution string
	batchOutputRoot string
	batchResume     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Split every video listed in a file",
	Long: `Split each URL of a list file in turn, one URL per line. Blank lines and
lines starting with # are ignored. A video that fails is reported and the batch
moves on to the next one.

Example:
  chaptercut batch --urls talks.txt --resolution 480p`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchURLsFile, "urls", "", "File with one video URL per line (required)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "Chapter source: description or scraper")
	batchCmd.Flags().StringVar(&batchResolution, "resolution", "", "Preferred download resolution (default from config)")
	batchCmd.Flags().StringVar(&batchOutputRoot, "output", "", "Directory that receives the per-video folders (default from config)")
	batchCmd.Flags().BoolVar(&batchResume, "resume", false, "Reuse existing output directories and skip finished clips")
	batchCmd.MarkFlagRequired("urls")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	f, err := os.Open(batchURLsFile)
	if err != nil {
		return fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	logger, _ := logging.WithRunID(GetLogger())
	logger.Debug("starting batch", "list", batchURLsFile)

	deps, cleanup, err := buildDependencies(ctx, cfg, false, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	template := SplitInput{
		Mode:       batchMode,
		OutputRoot: firstNonEmpty(batchOutputRoot, cfg.Paths.OutputRoot),
		Resolution: firstNonEmpty(batchResolution, cfg.Download.Resolution),
		Resume:     batchResume,
	}
	return RunBatchWithDependencies(ctx, deps, f, template, os.Stdout)
}

// ErrBatchIncomplete is returned when at least one video of a batch failed
var ErrBatchIncomplete = errors.New("batch finished with failures")

// RunBatchWithDependencies runs the batch command with injected dependencies (for testing)
func RunBatchWithDependencies(ctx context.Context, deps Dependencies, urls io.Reader, template SplitInput, output io.Writer) error {
	identifiers, err := split.ReadURLList(urls)
	if err != nil {
		return err
	}
	if len(identifiers) == 0 {
		return errors.New("URL list is empty")
	}

	input, err := template.toServiceInput()
	if err != nil {
		return err
	}

	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	outcomes := newSplitService(deps, output).Batch(ctx, identifiers, input)

	failed := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(output, "FAILED  %s: %v\n", o.Identifier, o.Err)
		default:
			r := o.Result.Report
			fmt.Fprintf(output, "OK      %s: %d extracted, %d skipped, %d failed\n",
				o.Identifier, len(r.Extracted()), len(r.Skipped()), len(r.Failed()))
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d videos", ErrBatchIncomplete, failed, len(outcomes))
	}
	return nil
}
