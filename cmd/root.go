package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/tidyloom/internal/config"
	"github.com/KaramelBytes/tidyloom/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tidyloom",
	Short: "tidyloom: clean and explore tabular data files",
	Long: `tidyloom loads CSV and Excel files, profiles them, applies cleaning steps
(drop missing values, impute, drop duplicates), exports the result and renders
charts. "tidyloom serve" starts the Clean and Analyze dashboards.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tidyloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	if debug {
		cfg.LogLevel = "debug"
	}
}

// settings returns the loaded configuration, or the defaults when none could
// be loaded.
func settings() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}

// newLogger builds the process logger from the configuration.
func newLogger(c *cfgpkg.Global) (*slog.Logger, func(), error) {
	return logging.New(logging.Options{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		SeqURL: c.SeqURL,
	})
}
