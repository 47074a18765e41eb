package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
)

var backendsJSON bool

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List detection backends",
	Long: `Lists backends in the order they are tried. A remote backend is unavailable
until its credentials are set, and while it is backing off after a rate limit.`,
	Args: cobra.NoArgs,
	RunE: runBackends,
}

func init() {
	backendsCmd.Flags().BoolVar(&backendsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	statuses := analysisService.Backends()
	if backendsJSON {
		return outputJSON(cmd, view.FromBackends(statuses))
	}

	cmd.Println("Backends (in priority order):")
	cmd.Println()
	for _, s := range statuses {
		state := "available"
		if !s.Available {
			state = "unavailable"
		}
		kind := "local"
		if s.Remote {
			kind = "remote"
		}
		cmd.Printf("  %d. %-16s %-7s %-12s measures %s\n", s.Priority, s.Name, kind, state, s.Measures)
	}

	cmd.Println()
	cmd.Println("Run 'provenance settings credentials <backend>' to enable a remote backend.")
	return nil
}
