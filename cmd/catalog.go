package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"chaptercut/domain/catalog"
	"chaptercut/domain/video"
	sqlitecatalog "chaptercut/infrastructure/catalog"
	"chaptercut/infrastructure/logging"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the catalog of processed videos",
	Long: `List processed videos and their chapters, as recorded in the catalog database.

Examples:
  chaptercut catalog list
  chaptercut catalog show abcdefghijk`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed videos, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(store catalog.Store) error {
			return RunCatalogListWithDependencies(cmd.Context(), store, os.Stdout)
		})
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <video-id>",
	Short: "Show the chapters recorded for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(store catalog.Store) error {
			return RunCatalogShowWithDependencies(cmd.Context(), store, args[0], os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}

func withCatalog(fn func(catalog.Store) error) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if !cfg.Catalog.Enabled {
		return fmt.Errorf("the catalog is disabled; run 'chaptercut config set catalog.enabled true' first")
	}

	store, err := sqlitecatalog.Open(cfg.Catalog.Path, logging.WithComponent(GetLogger(), "catalog"))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	return fn(store)
}

// RunCatalogListWithDependencies prints every recorded video
func RunCatalogListWithDependencies(ctx context.Context, store catalog.Store, output io.Writer) error {
	entries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(output, "No videos processed yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		duration := "unknown"
		if e.Duration > 0 {
			duration = video.FormatClock(e.Duration)
		}
		rows = append(rows, []string{
			e.ID,
			e.Title,
			duration,
			strconv.Itoa(e.ChapterCount),
			e.ProcessedAt.Local().Format("2006-01-02 15:04"),
			e.OutputDir,
		})
	}
	fmt.Fprintln(output, renderTable([]string{"ID", "Title", "Duration", "Chapters", "Processed", "Directory"}, rows, 2, 3))
	return nil
}

// RunCatalogShowWithDependencies prints the chapters recorded for one video
func RunCatalogShowWithDependencies(ctx context.Context, store catalog.Store, videoID string, output io.Writer) error {
	chs, err := store.Chapters(ctx, videoID)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("video %q is not in the catalog", videoID)
	}
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	rows := make([][]string, 0, len(chs))
	for i, ch := range chs {
		path := ch.Path
		if path == "" {
			path = "(not extracted)"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			video.FormatClock(ch.Start),
			video.FormatClock(ch.End),
			ch.Title,
			path,
		})
	}
	fmt.Fprintln(output, renderTable([]string{"#", "Start", "End", "Title", "File"}, rows, 0))
	return nil
}
