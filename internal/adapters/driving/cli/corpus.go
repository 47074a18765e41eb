package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
)

var (
	corpusAddLabel  string
	corpusListLimit int
	corpusShowText  bool
	corpusJSON      bool
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local corpus",
	Long: `The corpus holds every text the local backend has seen. New submissions are
compared against it, so seeding it with reference material improves
plagiarism detection without any remote service.`,
}

var corpusAddCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Add reference files to the corpus",
	Long: `Extracts text from each file (.txt, .md, .docx, .pdf, .html) and stores it in the corpus
without analysing it. Content that is already stored is reported as a duplicate.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusAdd,
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runCorpusStats,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest corpus documents",
	Args:  cobra.NoArgs,
	RunE:  runCorpusList,
}

var corpusShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one corpus document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusShow,
}

func init() {
	corpusAddCmd.Flags().StringVarP(&corpusAddLabel, "label", "l", "", "label for a single file (default: file name)")
	corpusListCmd.Flags().IntVarP(&corpusListLimit, "limit", "n", 20, "maximum number of documents")
	corpusShowCmd.Flags().BoolVar(&corpusShowText, "text", false, "print the full text")
	corpusStatsCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")

	corpusCmd.AddCommand(corpusAddCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusShowCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusAdd(cmd *cobra.Command, args []string) error {
	if corpusService == nil || extractor == nil {
		return errors.New("corpus service not configured")
	}
	if corpusAddLabel != "" && len(args) > 1 {
		return errors.New("--label needs exactly one file")
	}

	var failed int
	for _, path := range args {
		label := corpusAddLabel
		if label == "" {
			label = filepath.Base(path)
		}

		text, err := extractor.ExtractFile(cmd.Context(), path)
		if err != nil {
			cmd.Printf("  ✗ %s: %v\n", path, err)
			failed++
			continue
		}

		ref, err := corpusService.Add(cmd.Context(), label, text)
		if err != nil {
			cmd.Printf("  ✗ %s: %v\n", path, err)
			failed++
			continue
		}
		if ref.Duplicate {
			cmd.Printf("  = %s already stored as %s\n", path, ref.ID)
			continue
		}
		cmd.Printf("  + %s → %s\n", path, ref.ID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be added", failed, len(args))
	}
	return nil
}

func runCorpusStats(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	stats, err := corpusService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read corpus stats: %w", err)
	}

	if corpusJSON {
		return outputJSON(cmd, view.FromStats(stats))
	}

	cmd.Println("Corpus")
	cmd.Println("======")
	cmd.Printf("  Documents:      %s\n", humanize.Comma(int64(stats.DocumentCount)))
	cmd.Printf("  Total terms:    %s\n", humanize.Comma(int64(stats.TotalTerms)))
	cmd.Printf("  Distinct terms: %s\n", humanize.Comma(int64(stats.DistinctTerms)))
	if stats.LastAddedAt.IsZero() {
		cmd.Println("  Last added:     never")
	} else {
		cmd.Printf("  Last added:     %s\n", humanize.Time(stats.LastAddedAt))
	}
	return nil
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	docs, err := corpusService.List(cmd.Context(), corpusListLimit)
	if err != nil {
		return fmt.Errorf("failed to list corpus: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("The corpus is empty.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("  %s  %-30s %8s words  %s\n",
			d.ID, d.Label, humanize.Comma(int64(d.WordCount)), humanize.Time(d.CreatedAt))
	}
	return nil
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	doc, err := corpusService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:        %s\n", doc.ID)
	cmd.Printf("Label:     %s\n", doc.Label)
	cmd.Printf("Added:     %s (%s)\n", doc.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(doc.CreatedAt))
	cmd.Printf("Words:     %s\n", humanize.Comma(int64(doc.WordCount)))
	cmd.Printf("Sentences: %d\n", len(doc.Sentences))
	cmd.Printf("Hash:      %s\n", doc.ContentHash)
	if corpusShowText {
		cmd.Println()
		cmd.Println(doc.Text)
	}
	return nil
}
