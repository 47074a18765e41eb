package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
)

func TestCorpusCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(corpusCmd.Commands()))
	for _, c := range corpusCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"add", "stats", "list", "show"}, names)
}

func TestCorpusAdd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	first := writeFile(t, dir, "one.txt", sampleText)
	second := writeFile(t, dir, "two.md", "## Notes\n\nA completely different note about migrating birds and wetland surveys.")

	out, err := run(t, nil, "corpus", "add", first, second)

	require.NoError(t, err)
	assert.Contains(t, out, "+ "+first+" → ")
	assert.Contains(t, out, "+ "+second+" → ")

	stats, err := env.corpus.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
}

func TestCorpusAdd_Duplicate(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "one.txt", sampleText)
	_, err := run(t, nil, "corpus", "add", path)
	require.NoError(t, err)

	out, err := run(t, nil, "corpus", "add", path)

	require.NoError(t, err)
	assert.Contains(t, out, "= "+path+" already stored as ")
}

func TestCorpusAdd_PartialFailure(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	good := writeFile(t, dir, "one.txt", sampleText)
	bad := writeFile(t, dir, "photo.png", "binary")

	out, err := run(t, nil, "corpus", "add", good, bad)

	require.Error(t, err)
	assert.Equal(t, "1 of 2 files could not be added", err.Error())
	assert.Contains(t, out, "✗ "+bad)

	stats, err := env.corpus.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentCount)
}

func TestCorpusAdd_LabelNeedsOneFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "corpus", "add", "--label", "x", "a.txt", "b.txt")
	assert.ErrorContains(t, err, "--label needs exactly one file")
}

func TestCorpusStats(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, nil, "corpus", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents:      0")
	assert.Contains(t, out, "Last added:     never")

	_, err = run(t, nil, "analyze", sampleText)
	require.NoError(t, err)

	out, err = run(t, nil, "corpus", "stats", "--json")
	require.NoError(t, err)

	var stats view.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.DocumentCount)
	assert.Positive(t, stats.DistinctTerms)
	assert.NotEmpty(t, stats.LastAddedAt)
}

func TestCorpusList(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, nil, "corpus", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "The corpus is empty.")

	_, err = run(t, nil, "analyze", "--label", "river-report", sampleText)
	require.NoError(t, err)
	analyzeLabel = ""

	out, err = run(t, nil, "corpus", "list", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "river-report")
	assert.Equal(t, 5, corpusListLimit)
}

func TestCorpusShow(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "analyze", "--label", "memo", sampleText)
	require.NoError(t, err)
	docs, err := env.corpus.List(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	id := docs[0].ID

	out, err := run(t, nil, "corpus", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "ID:        "+id)
	assert.Contains(t, out, "Label:     memo")
	assert.Contains(t, out, "Sentences: 3")
	assert.NotContains(t, out, "levee")

	out, err = run(t, nil, "corpus", "show", "--text", id)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "levee"))
}

func TestCorpusShow_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, nil, "corpus", "show", "missing")
	assert.ErrorContains(t, err, "failed to get document")
}
