package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "provenance", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "ephemeral", "config-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestRootCmd_Commands(t *testing.T) {
	for _, name := range []string{"analyze", "corpus", "backends", "settings", "watch", "serve", "mcp", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		assert.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestNeedsServices(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		expected bool
	}{
		{"root", rootCmd, false},
		{"version", versionCmd, false},
		{"group without run", corpusCmd, false},
		{"analyze", analyzeCmd, true},
		{"corpus stats", corpusStatsCmd, true},
		{"settings show", settingsShowCmd, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, needsServices(tt.cmd))
		})
	}
}

func TestIsSettingsCommand(t *testing.T) {
	assert.True(t, isSettingsCommand(settingsCmd))
	assert.True(t, isSettingsCommand(settingsCredentialsCmd))
	assert.False(t, isSettingsCommand(analyzeCmd))
	assert.False(t, isSettingsCommand(rootCmd))
}

func TestSettingsCommandSkipsEngine(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	analysisService = nil
	corpusService = nil

	_, err := run(t, nil, "settings", "show")

	assert.NoError(t, err)
	assert.Nil(t, analysisService)
	assert.Nil(t, corpusService)
}
