package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long: `Print the provenance version, the VCS revision it was built from when
known, the Go toolchain and the MCP server version.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("provenance version %s\n", version)
		if rev := revision(); rev != "" {
			cmd.Printf("  commit:   %s\n", rev)
		}
		cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  mcp:      %s\n", mcp.Version)
	},
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// revision returns the short VCS revision embedded by the Go toolchain,
// suffixed with "-dirty" for modified trees.
func revision() string {
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
