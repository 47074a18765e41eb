package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

func TestAnalyzeCmd_Use(t *testing.T) {
	assert.Equal(t, "analyze [text]", analyzeCmd.Use)
}

func TestAnalyzeCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"file", "label", "json", "backend"} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "f", analyzeCmd.Flags().Lookup("file").Shorthand)
}

func TestAnalyzeCmd_RejectsExtraArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "analyze", "one", "two")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 1 arg(s)")
}

func TestAnalyzeCmd_TextArgument(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, nil, "analyze", "--label", "memo", sampleText)

	require.NoError(t, err)
	assert.Contains(t, out, "Analysis: memo")
	assert.Contains(t, out, "local [local_statistical]")

	stats, err := env.corpus.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentCount)
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, nil, "analyze", "--json", sampleText)
	require.NoError(t, err)

	var result view.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.BackendLocal, result.Backend)
	assert.False(t, result.Degraded)
	require.NotNil(t, result.PlagiarismPercent)
	assert.Zero(t, *result.PlagiarismPercent)
	require.NotNil(t, result.AIPercent)
}

func TestAnalyzeCmd_ResubmissionMatches(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "analyze", sampleText)
	require.NoError(t, err)
	analyzeJSON = false

	out, err := run(t, nil, "analyze", "--json", sampleText)
	require.NoError(t, err)

	var result view.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.PlagiarismPercent)
	assert.GreaterOrEqual(t, *result.PlagiarismPercent, 80.0)
	assert.Equal(t, 1, result.SourcesFound)
}

func TestAnalyzeCmd_Stdin(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, strings.NewReader(sampleText), "analyze")

	require.NoError(t, err)
	assert.Contains(t, out, "Analysis: stdin")
}

func TestAnalyzeCmd_File(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "essay.md", "# Title\n\n"+sampleText)

	out, err := run(t, nil, "analyze", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Analysis: essay.md")
}

func TestAnalyzeCmd_FileAndTextConflict(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "essay.txt", sampleText)

	_, err := run(t, nil, "analyze", "--file", path, "more text")
	assert.ErrorContains(t, err, "not both")
}

func TestAnalyzeCmd_UnsupportedFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "image.png", "not text")

	_, err := run(t, nil, "analyze", "--file", path)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestAnalyzeCmd_TooShort(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "analyze", "hi")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	stats, err := env.corpus.Stats(t.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.DocumentCount)
}

func TestAnalyzeCmd_Backend(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "analyze", "--backend", "gptzero", sampleText)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

	analyzeBackend = ""
	out, err := run(t, nil, "analyze", "--backend", "local", sampleText)
	require.NoError(t, err)
	assert.Contains(t, out, "local [local_statistical]")
}

func TestAnalyzeCmd_NoService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	analysisService = nil

	err := runAnalyze(analyzeCmd, []string{sampleText})
	assert.ErrorContains(t, err, "not configured")
}

func TestAnalysisFor(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	svc, err := analysisFor("")
	require.NoError(t, err)
	assert.Same(t, analysisService, svc)

	svc, err = analysisFor(domain.BackendLocal)
	require.NoError(t, err)
	statuses := svc.Backends()
	require.Len(t, statuses, 1)
	assert.Equal(t, 1, statuses[0].Priority)

	_, err = analysisFor("nope")
	assert.Error(t, err)
}
