package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"chaptercut/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var errPromptCancelled = errors.New("prompt cancelled")

// metadata source choices offered by setup
const (
	metadataYtDlp  = "yt-dlp (no Google account needed)"
	metadataAPIKey = "YouTube Data API key"
	metadataOAuth  = "YouTube Data API with OAuth (private and unlisted videos)"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through choosing the output directory, the metadata
source, the download resolution, the chapter scraper and the catalog.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", configPath), false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to chaptercut setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	steps := []func(Prompter, *config.Config) error{
		promptPaths,
		promptMetadata,
		promptDownload,
		promptScraper,
		promptCatalog,
	}
	for _, step := range steps {
		if err := step(prompter, cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	root, err := prompter.Input("Where should chapter clips go?", cfg.Paths.OutputRoot)
	if err != nil {
		return errPromptCancelled
	}
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("output directory is required")
	}
	cfg.Paths.OutputRoot = root

	download, err := prompter.Input("Download sources to (empty for the clip directory)?", "")
	if err != nil {
		return errPromptCancelled
	}
	cfg.Paths.DownloadDir = strings.TrimSpace(download)
	return nil
}

func promptMetadata(prompter Prompter, cfg *config.Config) error {
	choice, err := prompter.Select("Where should video titles and descriptions come from?",
		[]string{metadataYtDlp, metadataAPIKey, metadataOAuth}, metadataYtDlp)
	if err != nil {
		return errPromptCancelled
	}

	switch choice {
	case metadataAPIKey:
		key, err := prompter.Input("YouTube Data API key?", "")
		if err != nil {
			return errPromptCancelled
		}
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("API key is required")
		}
		cfg.Youtube.APIKey = strings.TrimSpace(key)
	case metadataOAuth:
		credentials, err := prompter.Input("Path to OAuth client credentials file?", "credentials.json")
		if err != nil {
			return errPromptCancelled
		}
		if credentials == "" {
			credentials = "credentials.json"
		}
		cfg.Youtube.CredentialsFile = credentials

		token, err := prompter.Input("Where should the OAuth token be stored?", "config/youtube_token.json")
		if err != nil {
			return errPromptCancelled
		}
		if token == "" {
			token = "config/youtube_token.json"
		}
		cfg.Youtube.TokenFile = token
	}
	return nil
}

func promptDownload(prompter Prompter, cfg *config.Config) error {
	resolution, err := prompter.Select("Preferred download resolution?",
		[]string{"1080p", "720p", "480p", "360p"}, cfg.Download.Resolution)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Download.Resolution = resolution

	copyStreams, err := prompter.Confirm("Cut without re-encoding (faster, cuts snap to keyframes)?", false)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Encode.StreamCopy = copyStreams
	return nil
}

func promptScraper(prompter Prompter, cfg *config.Config) error {
	useScraper, err := prompter.Confirm("Use an external chapter scraper when a description has no timestamps?", false)
	if err != nil {
		return errPromptCancelled
	}
	if !useScraper {
		return nil
	}

	command, err := prompter.Input("  Scraper command:", "")
	if err != nil {
		return errPromptCancelled
	}
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("scraper command is required")
	}
	cfg.Scraper.Command = strings.TrimSpace(command)

	args, err := prompter.Input("  Arguments ({url} is replaced by the video URL):", "{url}")
	if err != nil {
		return errPromptCancelled
	}
	cfg.Scraper.Args = strings.Fields(args)
	return nil
}

func promptCatalog(prompter Prompter, cfg *config.Config) error {
	enabled, err := prompter.Confirm("Record processed videos in a catalog database?", true)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Catalog.Enabled = enabled
	if !enabled {
		return nil
	}

	path, err := prompter.Input("  Catalog database file:", cfg.Catalog.Path)
	if err != nil {
		return errPromptCancelled
	}
	if path != "" {
		cfg.Catalog.Path = path
	}
	return nil
}
