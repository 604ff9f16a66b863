package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tidyloom/internal/config"
	"github.com/KaramelBytes/tidyloom/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tidyloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		if c.SeqURL != "" {
			fmt.Fprintf(out, "seq_url: %s\n", mask(c.SeqURL))
		}
		fmt.Fprintf(out, "session_ttl_minutes: %d\n", c.SessionTTLMinutes)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "preview_rows: %d\n", c.PreviewRows)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(out, "bar_max_categories: %d\n", c.BarMaxCategories)
		fmt.Fprintf(out, "pie_max_categories: %d\n", c.PieMaxCategories)
		fmt.Fprintf(out, "heatmap_warn_columns: %d\n", c.HeatmapWarnColumns)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		ints := map[string]*int{
			"session_ttl_minutes":  &cfg.SessionTTLMinutes,
			"max_upload_mb":        &cfg.MaxUploadMB,
			"preview_rows":         &cfg.PreviewRows,
			"chart_width":          &cfg.ChartWidth,
			"chart_height":         &cfg.ChartHeight,
			"bar_max_categories":   &cfg.BarMaxCategories,
			"pie_max_categories":   &cfg.PieMaxCategories,
			"heatmap_warn_columns": &cfg.HeatmapWarnColumns,
		}
		switch key {
		case "listen_addr":
			cfg.ListenAddr = val
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "seq_url":
			cfg.SeqURL = val
		default:
			p, ok := ints[key]
			if !ok {
				return fmt.Errorf("unknown key: %s", key)
			}
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			*p = i
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// mask hides the password of a URL with credentials.
func mask(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
