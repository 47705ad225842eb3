//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chaptercut/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	dir        string
	configPath string
	cfg        *config.Config
	loadErr    error
	setErr     error
	restoreEnv []func()
}

// SharedConfigContext is reset before each scenario via After hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "chaptercut-config-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{dir: dir, configPath: filepath.Join(dir, "config.yaml")}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		for _, restore := range SharedConfigContext.restoreEnv {
			restore()
		}
		os.RemoveAll(SharedConfigContext.dir)
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, func(doc *godog.DocString) error {
		return SharedConfigContext.aConfigurationFileContaining(doc)
	})
	ctx.Step(`^no configuration file exists$`, func() error { return nil })
	ctx.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, func(name, value string) error {
		return SharedConfigContext.theEnvironmentVariableIs(name, value)
	})
	ctx.Step(`^I load the configuration$`, func() error { return SharedConfigContext.iLoadTheConfiguration() })
	ctx.Step(`^I attempt to load the configuration$`, func() error { return SharedConfigContext.iAttemptToLoadTheConfiguration() })
	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, func(key, value string) error {
		return SharedConfigContext.iSetTo(key, value)
	})
	ctx.Step(`^I attempt to set "([^"]*)" to "([^"]*)"$`, func(key, value string) error {
		SharedConfigContext.setErr = SharedConfigContext.set(key, value)
		return nil
	})
	ctx.Step(`^the output root should be "([^"]*)"$`, func(v string) error {
		return SharedConfigContext.expect("output root", v, func(c *config.Config) string { return c.Paths.OutputRoot })
	})
	ctx.Step(`^the download resolution should be "([^"]*)"$`, func(v string) error {
		return SharedConfigContext.expect("download resolution", v, func(c *config.Config) string { return c.Download.Resolution })
	})
	ctx.Step(`^the ffmpeg executable should be "([^"]*)"$`, func(v string) error {
		return SharedConfigContext.expect("ffmpeg executable", v, func(c *config.Config) string { return c.Tools.FFmpeg })
	})
	ctx.Step(`^the YouTube API key should be "([^"]*)"$`, func(v string) error {
		return SharedConfigContext.expect("API key", v, func(c *config.Config) string { return c.Youtube.APIKey })
	})
	ctx.Step(`^I should receive an error about missing configuration$`, func() error {
		return SharedConfigContext.iShouldReceiveAnErrorAboutMissingConfiguration()
	})
	ctx.Step(`^the change should be rejected as an unknown key$`, func() error {
		if !errors.Is(SharedConfigContext.setErr, config.ErrUnknownKey) {
			return fmt.Errorf("expected ErrUnknownKey, got %v", SharedConfigContext.setErr)
		}
		return nil
	})
}

func (c *configContext) aConfigurationFileContaining(doc *godog.DocString) error {
	return os.WriteFile(c.configPath, []byte(doc.Content), 0644)
}

func (c *configContext) theEnvironmentVariableIs(name, value string) error {
	previous, had := os.LookupEnv(name)
	c.restoreEnv = append(c.restoreEnv, func() {
		if had {
			os.Setenv(name, previous)
		} else {
			os.Unsetenv(name)
		}
	})
	return os.Setenv(name, value)
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	c.cfg = cfg
	c.loadErr = err
	return nil
}

func (c *configContext) set(key, value string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	return config.NewConfigManager(cfg, c.configPath).Set(key, value)
}

func (c *configContext) iSetTo(key, value string) error {
	if err := c.set(key, value); err != nil {
		return fmt.Errorf("unexpected error setting %s: %w", key, err)
	}
	return nil
}

func (c *configContext) expect(what, want string, get func(*config.Config) string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if got := get(c.cfg); got != want {
		return fmt.Errorf("expected %s %q, got %q", what, want, got)
	}
	return nil
}

func (c *configContext) iShouldReceiveAnErrorAboutMissingConfiguration() error {
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !errors.Is(c.loadErr, fs.ErrNotExist) {
		return fmt.Errorf("expected a missing file error, got %v", c.loadErr)
	}
	return nil
}
