package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// stdin is where prompts read from.
var stdin io.Reader = os.Stdin

// validateCredentials pings a vendor with freshly entered credentials.
var validateCredentials = backend.ValidateCredentials

var credentialsNoVerify bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change backend order, credentials, thresholds and timeouts.

Values are stored in config.toml in the configuration directory.
Credentials in the environment take precedence over the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. Lists are comma separated and timeouts are in seconds.

Examples:
  provenance settings set backends.order gptzero,local
  provenance settings set similarity.sentence_threshold 0.35
  provenance settings set timeouts.request 40`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsCredentialsCmd = &cobra.Command{
	Use:   "credentials [backend]",
	Short: "Store credentials for a remote backend",
	Long: `Prompt for a remote backend's API key, check it against the vendor and save it.

Backends: plagiarismcheck, copyleaks (also asks for the account email), gptzero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsCredentials,
}

func init() {
	settingsCredentialsCmd.Flags().BoolVar(&credentialsNoVerify, "no-verify", false,
		"save without contacting the vendor")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsCredentialsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries, err := settingsService.Entries()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", settingsService.Path())

	section := ""
	for _, e := range entries {
		group, _, _ := strings.Cut(e.Key, ".")
		if group != section {
			section = group
			cmd.Println()
			cmd.Printf("[%s]\n", section)
		}
		value := e.Value
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("  %-36s %s", e.Key, value)
		if e.Source != domain.SourceDefault {
			cmd.Printf("  (%s)", e.Source)
		}
		cmd.Println()
	}
	cmd.Println()

	if _, err := settingsService.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'provenance settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsCredentials(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(stdin)
	remotes := remoteBackends()

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		cmd.Println("Select Backend")
		for i, b := range remotes {
			cmd.Printf("  %d. %s\n", i+1, b)
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(reader), len(remotes), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		name = remotes[idx-1]
	}
	if !contains(remotes, name) {
		return fmt.Errorf("%w: %q does not take credentials", domain.ErrInvalidSettings, name)
	}

	cfg := domain.RemoteSettings{Enabled: true}
	if current, err := settingsService.Get(); err == nil {
		cfg.BaseURL = current.Backends.Remote[name].BaseURL
	}

	if name == domain.BackendCopyleaks {
		cmd.Print("Enter account email: ")
		cfg.Account = readLine(reader)
		if cfg.Account == "" {
			return errors.New("account email is required for copyleaks")
		}
	}

	cmd.Print("Enter API key: ")
	cfg.APIKey = readPassword(reader)
	cmd.Println()
	if cfg.APIKey == "" {
		return errors.New("API key is required")
	}

	if !credentialsNoVerify {
		cmd.Print("Validating credentials... ")
		if err := validateCredentials(cmd.Context(), name, cfg); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("credential validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.SetCredentials(name, cfg.Account, cfg.APIKey); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	cmd.Printf("Credentials saved for %s (%s)\n", name, maskAPIKey(cfg.APIKey))
	return nil
}

func remoteBackends() []string {
	var out []string
	for _, b := range domain.KnownBackends() {
		if b != domain.BackendLocal {
			out = append(out, b)
		}
	}
	return out
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
