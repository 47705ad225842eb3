// Package scraper runs an external chapter scraper, such as a headless browser script,
// that prints the chapter list of a video as JSON.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chaptercut/domain/chapter"
	"chaptercut/infrastructure/shell"
)

// URLPlaceholder in an argument is replaced by the video identifier
const URLPlaceholder = "{url}"

// CommandScraper implements chapter.Scraper by running a command that writes
// [{"timestamp": "00:01:30", "title": "..."}] to stdout
type CommandScraper struct {
	command string
	args    []string
	runner  shell.CommandRunner
}

// Option is a functional option for configuring CommandScraper
type Option func(*CommandScraper)

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner shell.CommandRunner) Option {
	return func(s *CommandScraper) {
		s.runner = runner
	}
}

// NewCommandScraper creates a scraper running command with args. The identifier is
// substituted for {url}, or appended when no argument contains the placeholder.
func NewCommandScraper(command string, args []string, opts ...Option) *CommandScraper {
	s := &CommandScraper{
		command: command,
		args:    append([]string(nil), args...),
		runner:  &shell.ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scrape implements chapter.Scraper
func (s *CommandScraper) Scrape(ctx context.Context, identifier string) ([]chapter.RawMarker, error) {
	if strings.TrimSpace(s.command) == "" {
		return nil, fmt.Errorf("%w: no scraper command configured", chapter.ErrScraperUnavailable)
	}

	out, err := s.runner.Output(ctx, s.command, s.buildArgs(identifier)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", chapter.ErrScraperUnavailable, err)
	}

	return ParseOutput(out)
}

func (s *CommandScraper) buildArgs(identifier string) []string {
	args := make([]string, 0, len(s.args)+1)
	substituted := false
	for _, a := range s.args {
		if strings.Contains(a, URLPlaceholder) {
			a = strings.ReplaceAll(a, URLPlaceholder, identifier)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, identifier)
	}
	return args
}

// ParseOutput decodes the scraper's JSON chapter list
func ParseOutput(data []byte) ([]chapter.RawMarker, error) {
	var markers []chapter.RawMarker
	if err := json.Unmarshal(data, &markers); err != nil {
		return nil, fmt.Errorf("%w: invalid scraper output: %w", chapter.ErrScraperUnavailable, err)
	}
	for i := range markers {
		markers[i].Clock = strings.TrimSpace(markers[i].Clock)
		markers[i].Title = strings.TrimSpace(markers[i].Title)
	}
	if markers == nil {
		markers = []chapter.RawMarker{}
	}
	return markers, nil
}

// Ensure CommandScraper implements chapter.Scraper
var _ chapter.Scraper = (*CommandScraper)(nil)
