package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
)

func TestBackendsCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, nil, "backends")

	require.NoError(t, err)
	assert.Contains(t, out, "Backends (in priority order):")
	assert.Regexp(t, `1\. local\s+local\s+available\s+measures plagiarism\+ai`, out)
}

func TestBackendsCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, nil, "backends", "--json")
	require.NoError(t, err)

	var backends []view.Backend
	require.NoError(t, json.Unmarshal([]byte(out), &backends))
	require.Len(t, backends, 1)
	assert.Equal(t, "local", backends[0].Name)
	assert.True(t, backends[0].Available)
	assert.False(t, backends[0].Remote)
	assert.Equal(t, []string{"plagiarism", "ai"}, backends[0].Measures)
}
