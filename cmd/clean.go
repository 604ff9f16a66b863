package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/cleaning"
	"github.com/KaramelBytes/tidyloom/internal/export"
	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/table"
	"github.com/KaramelBytes/tidyloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cleanOps        []string
	cleanOutputPath string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Apply cleaning steps to a CSV/XLS/XLSX file and export the result",
	Long: `Clean applies each --op in the order given, then writes the working table
as CSV or XLSX depending on the --output extension.

Operations: drop-nulls, impute, drop-duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanOutputPath == "" {
			return fmt.Errorf("--output is required")
		}
		encode, err := encoderFor(cleanOutputPath)
		if err != nil {
			return err
		}
		ops := make([]cleaning.Op, 0, len(cleanOps))
		for _, raw := range cleanOps {
			op, err := cleaning.ParseOp(raw)
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}

		t, err := loader.LoadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, op := range ops {
			res, err := cleaning.Apply(t, op)
			if err != nil {
				return err
			}
			t = res.Table
			fmt.Fprintf(out, "✓ %s (rows %d → %d, missing %d → %d)\n",
				res.Message, res.RowsBefore, res.RowsAfter, res.NullsBefore, res.NullsAfter)
			if len(res.Unresolved) > 0 {
				fmt.Fprintf(out, "⚠ Columns with no values were left unchanged: %s\n", strings.Join(res.Unresolved, ", "))
			}
		}

		data, err := encode(t)
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(cleanOutputPath, data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %d rows to %s\n", t.NumRows(), cleanOutputPath)
		return nil
	},
}

// encoderFor picks the export format from the output extension.
func encoderFor(path string) (func(*table.Table) ([]byte, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.CSV, nil
	case ".xlsx":
		return export.XLSX, nil
	default:
		return nil, fmt.Errorf("unsupported output extension %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringArrayVar(&cleanOps, "op", nil, "cleaning operation to apply (repeatable, applied in order)")
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "output path (.csv or .xlsx)")
}
