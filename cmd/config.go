package cmd

import (
	"fmt"
	"os"

	"chaptercut/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change configuration values",
	Long: `Read and change values of the configuration file by dotted key.
Every change is validated and written back immediately.

Examples:
  chaptercut config list
  chaptercut config get download.resolution
  chaptercut config set catalog.enabled true
  chaptercut config set scraper.args "--json,{url}"
  chaptercut config unset tools.ffmpeg`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every configuration value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForEdit()
		if err != nil {
			return err
		}
		return RunConfigListWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForEdit()
		if err != nil {
			return err
		}
		return RunConfigGetWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForEdit()
		if err != nil {
			return err
		}
		return RunConfigSetWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset one configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForEdit()
		if err != nil {
			return err
		}
		return RunConfigUnsetWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// loadConfigForEdit tolerates an invalid file so it can be repaired with set
func loadConfigForEdit() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// RunConfigListWithDependencies prints every key and value
func RunConfigListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	entries := mgr.List()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Value})
	}
	fmt.Fprintf(out, "Configuration file: %s\n", configPath)
	fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows))
	return nil
}

// RunConfigGetWithDependencies prints the value of key
func RunConfigGetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	value, err := config.NewConfigManager(cfg, configPath).Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, value)
	return nil
}

// RunConfigSetWithDependencies changes key and saves the file
func RunConfigSetWithDependencies(cfg *config.Config, configPath, key, value string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.Set(key, value); err != nil {
		return err
	}
	current, _ := mgr.Get(key)
	fmt.Fprintf(out, "Set %s = %q\n", key, current)
	return nil
}

// RunConfigUnsetWithDependencies resets key to its default and saves the file
func RunConfigUnsetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.Unset(key); err != nil {
		return err
	}
	current, _ := mgr.Get(key)
	fmt.Fprintf(out, "Reset %s to %q\n", key, current)
	return nil
}
