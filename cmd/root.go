package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chaptercut/infrastructure/config"
	"chaptercut/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgErr   error
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chaptercut",
	Short: "Split videos into one clip per chapter",
	Long: `chaptercut cuts a video into one file per chapter:

  - Read chapter timestamps from the video description
  - Fall back to a chapter scraper when the description has none
  - Download the source once, extract every chapter, then remove the download
  - Skip chapters whose clip already exists, so reruns only do the missing work

Example:
  chaptercut split --url https://www.youtube.com/watch?v=abcdefghijk`,
	SilenceUsage: true,
}

// Execute runs the root command; an interrupt cancels the running command's context
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	cfg, cfgErr = config.Load(cfgFile)
	if errors.Is(cfgErr, fs.ErrNotExist) {
		// Running without a config file uses the defaults
		cfg = config.Default()
		cfg.ApplyEnv(os.Getenv)
		cfgErr = nil
	}
	if cfg != nil && logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

// GetConfig returns the loaded configuration, or an error when the file exists but is invalid
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// GetLogger returns the process logger, writing structured records to stderr
func GetLogger() *slog.Logger {
	if logger != nil {
		return logger
	}
	opts := logging.Options{Level: "info", Format: "text"}
	if cfg != nil {
		opts = logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	}
	l, err := logging.New(os.Stderr, opts)
	if err != nil {
		l, _ = logging.New(os.Stderr, logging.Options{Level: opts.Level})
	}
	logger = l
	return logger
}
