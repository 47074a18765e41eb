package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
	"github.com/custodia-labs/provenance-cli/internal/logger"
	"github.com/custodia-labs/provenance-cli/internal/watch"
)

var watchJSON bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyse files dropped into a folder",
	Long: `Watches a folder and analyses every .txt, .md, .docx, .pdf or .html file created in it,
once the file has stopped changing. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "print one JSON result per line")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if analysisService == nil || extractor == nil {
		return errors.New("analysis service not configured")
	}

	paths, err := watch.New(args[0], extractor.Supports, 0).Watch(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])

	for path := range paths {
		if err := analyzeDropped(cmd, path); err != nil {
			cmd.PrintErrf("%s: %v\n", filepath.Base(path), err)
		}
	}
	return nil
}

// analyzeDropped analyses one settled file and prints a summary line.
func analyzeDropped(cmd *cobra.Command, path string) error {
	done := logger.Timed("watch: " + filepath.Base(path))
	defer done()

	text, err := extractor.ExtractFile(cmd.Context(), path)
	if err != nil {
		return err
	}
	result, err := analysisService.Analyze(cmd.Context(), text, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	v := view.FromResult(result)
	if watchJSON {
		return outputCompactJSON(cmd, v)
	}
	cmd.Printf("%-32s plagiarism %s  ai %s  risk %s  [%s]\n",
		filepath.Base(path), percent(v.PlagiarismPercent), percent(v.AIPercent), v.RiskLevel, v.Method)
	return nil
}

func percent(p *float64) string {
	if p == nil {
		return "  n/a"
	}
	return fmt.Sprintf("%5.1f%%", *p)
}
