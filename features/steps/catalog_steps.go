//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chaptercut/cmd"
	sqlitecatalog "chaptercut/infrastructure/catalog"

	"github.com/cucumber/godog"
)

type catalogContext struct {
	dir   string
	store *sqlitecatalog.SQLiteStore
}

// SharedCatalogContext is reset after each scenario
var SharedCatalogContext = &catalogContext{}

func InitializeCatalogScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedCatalogContext.store != nil {
			SharedCatalogContext.store.Close()
		}
		if SharedCatalogContext.dir != "" {
			os.RemoveAll(SharedCatalogContext.dir)
		}
		SharedCatalogContext = &catalogContext{}
		return c, nil
	})

	ctx.Step(`^a catalog database$`, func() error { return SharedCatalogContext.aCatalogDatabase() })
	ctx.Step(`^I split the video with the catalog enabled$`, func() error {
		if SharedCatalogContext.store == nil {
			return fmt.Errorf("no catalog database was opened")
		}
		SharedSplitContext.store = SharedCatalogContext.store
		return SharedSplitContext.split(false)
	})
	ctx.Step(`^the catalog should list "([^"]*)" with (\d+) chapters$`, func(id string, n int) error {
		return SharedCatalogContext.theCatalogShouldList(id, n)
	})
	ctx.Step(`^the catalog listing should mention "([^"]*)"$`, func(text string) error {
		return SharedCatalogContext.theCatalogListingShouldMention(text)
	})
}

func (c *catalogContext) aCatalogDatabase() error {
	dir, err := os.MkdirTemp("", "chaptercut-catalog-*")
	if err != nil {
		return err
	}
	c.dir = dir

	store, err := sqlitecatalog.Open(filepath.Join(dir, "chaptercut.db"), nil)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	c.store = store
	return nil
}

func (c *catalogContext) theCatalogShouldList(id string, n int) error {
	entries, err := c.store.List(context.Background())
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID != id {
			continue
		}
		if e.ChapterCount != n {
			return fmt.Errorf("expected %d chapters for %s, got %d", n, id, e.ChapterCount)
		}
		return nil
	}
	return fmt.Errorf("video %s not found in catalog (%d entries)", id, len(entries))
}

func (c *catalogContext) theCatalogListingShouldMention(text string) error {
	var out bytes.Buffer
	if err := cmd.RunCatalogListWithDependencies(context.Background(), c.store, &out); err != nil {
		return err
	}
	if !strings.Contains(out.String(), text) {
		return fmt.Errorf("catalog listing does not mention %q:\n%s", text, out.String())
	}
	return nil
}
