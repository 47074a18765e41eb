// Package cli provides the cobra command tree of the provenance binary.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	verbose   bool
	ephemeral bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "provenance",
	Short: "Plagiarism and generated-text detection",
	Long: `Provenance checks text for overlap with previously seen material and
estimates how likely it is to be machine-generated.

Backends are tried in priority order: commercial services when credentials
are configured, then the local statistical engine, which needs no network.
Every analysed text is added to the local corpus so later submissions can
be compared against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
		if !needsServices(cmd) {
			return nil
		}
		return ensureServices(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false,
		"keep the corpus in memory for this run only")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"configuration and data directory (default ~/.provenance)")
}

// Execute runs the root command and releases services on exit.
// An interrupt cancels the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// needsServices reports whether cmd touches the engine. Help and version
// must work without a readable config or corpus.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "provenance", "completion":
		return false
	}
	return cmd.Runnable()
}
