//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chaptercut/application/segment"
	"chaptercut/cmd"
	"chaptercut/domain/catalog"
	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
	"chaptercut/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// stubMetadata serves one video's metadata
type stubMetadata struct {
	meta *video.Metadata
}

func (s *stubMetadata) Lookup(ctx context.Context, identifier string) (*video.Metadata, error) {
	copied := *s.meta
	return &copied, nil
}

// stubDownloader writes a placeholder file as the downloaded source
type stubDownloader struct {
	downloads []string
	duration  int
}

func (s *stubDownloader) Acquire(ctx context.Context, identifier, outputDir string, opts video.AcquireOptions) (*video.Source, error) {
	name := ".source"
	if opts.FileName != "" {
		name = opts.FileName
	}
	path := filepath.Join(outputDir, name+".mp4")
	if err := os.WriteFile(path, []byte("source"), 0644); err != nil {
		return nil, err
	}
	s.downloads = append(s.downloads, path)
	return &video.Source{Path: path, Duration: s.duration, Owned: true}, nil
}

// stubClipper writes clips and records the requested ranges
type stubClipper struct {
	requests []video.ClipRequest
	failing  map[string]bool
}

func (s *stubClipper) Extract(ctx context.Context, req video.ClipRequest) error {
	s.requests = append(s.requests, req)
	name := strings.TrimPrefix(strings.TrimSuffix(filepath.Base(req.OutputPath), ".part.mp4"), ".")
	if s.failing[name] {
		return errors.New("ffmpeg exited with status 1")
	}
	return os.WriteFile(req.OutputPath, []byte("clip"), 0644)
}

// stubScraper returns a fixed marker list
type stubScraper struct {
	markers []chapter.RawMarker
}

func (s *stubScraper) Scrape(ctx context.Context, identifier string) ([]chapter.RawMarker, error) {
	if len(s.markers) == 0 {
		return nil, chapter.ErrScraperUnavailable
	}
	return s.markers, nil
}

type splitContext struct {
	root       string
	metadata   *stubMetadata
	downloader *stubDownloader
	clipper    *stubClipper
	scraper    *stubScraper
	store      catalog.Store // nil unless a catalog step opened one
	output     bytes.Buffer
	runErr     error
	lastRun    int // index of the first clip request of the latest run
}

// SharedSplitContext is reset before each scenario
var SharedSplitContext = &splitContext{}

func InitializeSplitScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		root, err := os.MkdirTemp("", "chaptercut-split-*")
		if err != nil {
			return c, err
		}
		SharedSplitContext = &splitContext{
			root:       root,
			metadata:   &stubMetadata{meta: &video.Metadata{ID: "abcdefghijk", URL: "https://www.youtube.com/watch?v=abcdefghijk"}},
			downloader: &stubDownloader{},
			clipper:    &stubClipper{failing: map[string]bool{}},
			scraper:    &stubScraper{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		os.RemoveAll(SharedSplitContext.root)
		SharedSplitContext = &splitContext{}
		return c, nil
	})

	s := func() *splitContext { return SharedSplitContext }

	ctx.Step(`^a video "([^"]*)" of duration "([^"]*)"$`, func(title, iso string) error { return s().aVideoOfDuration(title, iso) })
	ctx.Step(`^the video duration is unknown$`, func() error {
		s().metadata.meta.Duration = video.ISODuration{}
		return nil
	})
	ctx.Step(`^the description is:$`, func(doc *godog.DocString) error {
		s().metadata.meta.Description = doc.Content
		return nil
	})
	ctx.Step(`^the scraper reports:$`, func(table *godog.Table) error { return s().theScraperReports(table) })
	ctx.Step(`^extracting "([^"]*)" fails$`, func(title string) error {
		s().clipper.failing[video.SanitizeFilename(title)] = true
		return nil
	})
	ctx.Step(`^I split the video$`, func() error { return s().split(false) })
	ctx.Step(`^I only download the video$`, func() error { return s().downloadOnly() })
	ctx.Step(`^the file "([^"]*)" should be kept$`, func(name string) error {
		if _, err := os.Stat(s().clipPath(name)); err != nil {
			return fmt.Errorf("expected %s to be kept: %w", name, err)
		}
		return nil
	})
	ctx.Step(`^I split the video again with resume$`, func() error { return s().split(true) })
	ctx.Step(`^I delete the clip "([^"]*)"$`, func(name string) error { return os.Remove(s().clipPath(name)) })
	ctx.Step(`^the command should succeed$`, func() error { return s().theCommandShouldSucceed() })
	ctx.Step(`^the command should fail with "([^"]*)"$`, func(text string) error { return s().theCommandShouldFailWith(text) })
	ctx.Step(`^the following clips should exist:$`, func(table *godog.Table) error { return s().theFollowingClipsShouldExist(table) })
	ctx.Step(`^the clip "([^"]*)" should not exist$`, func(name string) error { return s().theClipShouldNotExist(name) })
	ctx.Step(`^the clips should cover:$`, func(table *godog.Table) error { return s().theClipsShouldCover(table) })
	ctx.Step(`^the downloaded source should be removed$`, func() error { return s().theDownloadedSourceShouldBeRemoved() })
	ctx.Step(`^nothing should have been downloaded$`, func() error {
		if n := len(s().downloader.downloads); n != 0 {
			return fmt.Errorf("expected no downloads, got %d", n)
		}
		return nil
	})
	ctx.Step(`^(\d+) clips? should have been extracted on the last run$`, func(n int) error {
		return s().clipsExtractedOnLastRun(n)
	})
}

func (c *splitContext) aVideoOfDuration(title, iso string) error {
	d, err := video.ParseISODuration(iso)
	if err != nil {
		return err
	}
	c.metadata.meta.Title = title
	c.metadata.meta.Duration = d
	c.downloader.duration = d.Seconds
	return nil
}

func (c *splitContext) theScraperReports(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("row %d: expected timestamp and title", i)
		}
		c.scraper.markers = append(c.scraper.markers, chapter.RawMarker{
			Clock: row.Cells[0].Value,
			Title: row.Cells[1].Value,
		})
	}
	return nil
}

func (c *splitContext) split(resume bool) error {
	deps := cmd.Dependencies{
		Metadata:  c.metadata,
		Source:    c.downloader,
		Extractor: c.clipper,
		Scraper:   c.scraper,
		FS:        filesystem.NewFS(),
		Locker:    filesystem.NewLocker(),
		Store:     c.store,
	}
	input := cmd.SplitInput{
		Identifier: c.metadata.meta.URL,
		OutputRoot: c.root,
		Resolution: "720p",
		Resume:     resume,
	}

	c.lastRun = len(c.clipper.requests)
	c.output.Reset()
	c.runErr = cmd.RunSplitWithDependencies(context.Background(), deps, input, &c.output)
	return nil
}

func (c *splitContext) downloadOnly() error {
	deps := cmd.Dependencies{
		Metadata:  c.metadata,
		Source:    c.downloader,
		Extractor: c.clipper,
		Scraper:   c.scraper,
		FS:        filesystem.NewFS(),
		Locker:    filesystem.NewLocker(),
	}
	input := cmd.SplitInput{
		Identifier:   c.metadata.meta.URL,
		OutputRoot:   c.root,
		DownloadOnly: true,
	}

	c.lastRun = len(c.clipper.requests)
	c.output.Reset()
	c.runErr = cmd.RunSplitWithDependencies(context.Background(), deps, input, &c.output)
	return nil
}

func (c *splitContext) videoDir() string {
	return filepath.Join(c.root, video.SanitizeFilename(c.metadata.meta.Title))
}

func (c *splitContext) clipPath(name string) string {
	return filepath.Join(c.videoDir(), name)
}

func (c *splitContext) theCommandShouldSucceed() error {
	if c.runErr != nil {
		return fmt.Errorf("expected success, got %v\noutput:\n%s", c.runErr, c.output.String())
	}
	return nil
}

func (c *splitContext) theCommandShouldFailWith(text string) error {
	if c.runErr == nil {
		return fmt.Errorf("expected an error mentioning %q, got success", text)
	}
	if !strings.Contains(c.runErr.Error(), text) {
		return fmt.Errorf("expected an error mentioning %q, got %v", text, c.runErr)
	}
	return nil
}

func (c *splitContext) theFollowingClipsShouldExist(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		path := c.clipPath(row.Cells[0].Value)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("expected clip %s: %w", path, err)
		}
	}
	return nil
}

func (c *splitContext) theClipShouldNotExist(name string) error {
	if _, err := os.Stat(c.clipPath(name)); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s to be absent (stat error: %v)", name, err)
	}
	if _, err := os.Stat(segment.PartPath(c.clipPath(name))); !os.IsNotExist(err) {
		return fmt.Errorf("partial file for %s was left behind", name)
	}
	return nil
}

func (c *splitContext) theClipsShouldCover(table *godog.Table) error {
	requests := c.clipper.requests[c.lastRun:]
	if len(requests) != len(table.Rows)-1 {
		return fmt.Errorf("expected %d clips, got %d", len(table.Rows)-1, len(requests))
	}
	for i, row := range table.Rows[1:] {
		got := fmt.Sprintf("%s-%s", video.FormatClock(requests[i].Start), video.FormatClock(requests[i].End))
		want := fmt.Sprintf("%s-%s", row.Cells[0].Value, row.Cells[1].Value)
		if got != want {
			return fmt.Errorf("clip %d covers %s, want %s", i+1, got, want)
		}
	}
	return nil
}

func (c *splitContext) theDownloadedSourceShouldBeRemoved() error {
	if len(c.downloader.downloads) == 0 {
		return fmt.Errorf("nothing was downloaded")
	}
	for _, path := range c.downloader.downloads {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			return fmt.Errorf("downloaded source %s still exists", path)
		}
	}
	return nil
}

func (c *splitContext) clipsExtractedOnLastRun(n int) error {
	if got := len(c.clipper.requests) - c.lastRun; got != n {
		return fmt.Errorf("expected %d clips extracted, got %d", n, got)
	}
	return nil
}
