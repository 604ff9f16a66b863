package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/tidyloom/internal/analysis"
	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	profOutputPath string
	profOutDir     string
	profSampleRows int
	profMaxPairs   int
	profCorr       bool
	profJSON       bool
	profQuiet      bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <files...>",
	Short: "Profile CSV/XLS/XLSX files and produce a concise summary",
	Long: `Profile prints row, column, missing-value and duplicate counts, the column
info block, numeric and categorical statistics, and optionally Pearson
correlations. Globs are expanded; with several files use --out-dir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if len(files) > 1 && profOutputPath != "" {
			return fmt.Errorf("--output takes a single input file; use --out-dir for %d files", len(files))
		}

		opt := analysis.DefaultOptions()
		if profSampleRows > 0 {
			opt.SampleRows = profSampleRows
		}
		if profMaxPairs > 0 {
			opt.MaxPairs = profMaxPairs
		}
		opt.Correlations = profCorr

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if total > 1 && !profQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loader.LoadFile(path)
			if err != nil {
				return err
			}
			rep := analysis.Analyze(filepath.Base(path), t, opt)

			var body []byte
			ext := ".profile.md"
			if profJSON {
				if body, err = utils.PrettyJSON(rep); err != nil {
					return err
				}
				body = append(body, '\n')
				ext = ".profile.json"
			} else {
				body = []byte(rep.Markdown())
			}

			// Decide where to write: --output path, --out-dir, or stdout
			switch {
			case profOutputPath != "":
				if err := utils.SafeWriteFile(profOutputPath, body); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(out, "✓ Wrote profile to %s\n", profOutputPath)
			case profOutDir != "":
				outFile, renamed := utils.UniquePath(profOutDir, utils.BaseName(path), ext)
				if renamed && !profQuiet {
					fmt.Fprintf(out, "⚠ Detected existing profile, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
				}
				if err := utils.SafeWriteFile(outFile, body); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				if !profQuiet {
					fmt.Fprintf(out, "✓ Wrote profile to %s\n", outFile)
				}
			default:
				fmt.Fprintln(out, string(body))
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping repeats.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile")
	profileCmd.Flags().StringVar(&profOutDir, "out-dir", "", "directory for one profile per input file")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profMaxPairs, "max-pairs", 10, "maximum correlation pairs to list")
	profileCmd.Flags().BoolVar(&profCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	profileCmd.Flags().BoolVar(&profJSON, "json", false, "write JSON instead of Markdown")
	profileCmd.Flags().BoolVar(&profQuiet, "quiet", false, "suppress progress and non-essential output")
}
