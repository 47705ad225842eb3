package split

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// BatchOutcome is the result of one entry of a batch run
type BatchOutcome struct {
	Identifier string
	Result     *Result
	Err        error
}

// ReadURLList reads one URL per line, ignoring blank lines and # comments
func ReadURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

// Batch splits every identifier in turn with the settings of template. A failing
// entry is reported and the batch moves on; only cancellation stops it early.
func (s *Service) Batch(ctx context.Context, identifiers []string, template Input) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(identifiers))
	for i, id := range identifiers {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, BatchOutcome{Identifier: id, Err: err})
			continue
		}

		fmt.Fprintf(s.output, "=== [%d/%d] %s ===\n", i+1, len(identifiers), id)
		input := template
		input.Identifier = id

		result, err := s.Split(ctx, input)
		if err != nil {
			s.logger.Error("batch entry failed", "identifier", id, "error", err)
			fmt.Fprintf(s.output, "Failed: %v\n\n", err)
		}
		outcomes = append(outcomes, BatchOutcome{Identifier: id, Result: result, Err: err})
	}
	return outcomes
}
