package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/report"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// maxStdinBytes caps text piped on standard input.
const maxStdinBytes = 8 << 20

var (
	analyzeFile    string
	analyzeLabel   string
	analyzeJSON    bool
	analyzeBackend string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Check text for plagiarism and machine generation",
	Long: `Scores text for overlap with known material and for signs of machine generation.

Text comes from the argument, from --file (.txt, .md, .docx, .pdf, .html), or from
standard input when neither is given or the argument is "-". The text is
added to the local corpus when the local backend runs.

Examples:
  provenance analyze "Text to check..."
  provenance analyze --file essay.docx
  cat essay.txt | provenance analyze --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "read text from a file")
	analyzeCmd.Flags().StringVarP(&analyzeLabel, "label", "l", "", "label recorded with the result (default: file name)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeBackend, "backend", "b", "", "use only this backend")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	text, label, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if analyzeLabel != "" {
		label = analyzeLabel
	}

	svc, err := analysisFor(analyzeBackend)
	if err != nil {
		return err
	}

	result, err := svc.Analyze(cmd.Context(), text, label)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return outputJSON(cmd, view.FromResult(result))
	}
	cmd.Print(report.Render(result, nil))
	return nil
}

// readInput resolves the text to analyse and its default label.
func readInput(cmd *cobra.Command, args []string) (text, label string, err error) {
	if analyzeFile != "" {
		if len(args) == 1 {
			return "", "", errors.New("give either text or --file, not both")
		}
		if extractor == nil {
			return "", "", errors.New("text extractor not configured")
		}
		text, err := extractor.ExtractFile(cmd.Context(), analyzeFile)
		if err != nil {
			return "", "", err
		}
		return text, filepath.Base(analyzeFile), nil
	}

	if len(args) == 1 && args[0] != "-" {
		return args[0], "", nil
	}

	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	if len(data) > maxStdinBytes {
		return "", "", domain.NewValidationError("input exceeds %d bytes", maxStdinBytes)
	}
	return string(data), "stdin", nil
}

func outputCompactJSON(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
