package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/chart"
	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chartKind       string
	chartX          string
	chartY          string
	chartOutputPath string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Render a line, scatter, bar, pie or heatmap chart as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := chart.ParseKind(chartKind)
		if err != nil {
			return err
		}
		if chartOutputPath == "" {
			return fmt.Errorf("--output is required")
		}
		t, err := loader.LoadFile(args[0])
		if err != nil {
			return err
		}
		c := settings()
		opt := chart.Options{
			Width:              c.ChartWidth,
			Height:             c.ChartHeight,
			BarMaxCategories:   c.BarMaxCategories,
			PieMaxCategories:   c.PieMaxCategories,
			HeatmapWarnColumns: c.HeatmapWarnColumns,
		}
		res, err := chart.Render(t, chart.Request{X: chartX, Y: chartY, Kind: kind}, opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		if !res.Rendered() {
			return fmt.Errorf("nothing to draw: %s", strings.TrimSpace(res.Notice))
		}
		if err := utils.SafeWriteFile(chartOutputPath, res.PNG); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %s to %s\n", res.Title, chartOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartKind, "kind", "", "chart kind: line|scatter|bar|pie|heatmap")
	chartCmd.Flags().StringVar(&chartX, "x", "", "column for the x axis (categories for bar and pie)")
	chartCmd.Flags().StringVar(&chartY, "y", "", "numeric column for the y axis")
	chartCmd.Flags().StringVarP(&chartOutputPath, "output", "o", "", "output PNG path")
}
