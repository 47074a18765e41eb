package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/services"
	"github.com/custodia-labs/provenance-cli/internal/extract"
)

const sampleText = "The river flooded the lower town twice last spring. " +
	"Engineers proposed a new levee along the eastern bank. " +
	"Residents argued about the cost at every council meeting."

// testEnv exposes the stores behind the wired test services.
type testEnv struct {
	config *memory.ConfigStore
	corpus *memory.CorpusStore
}

// setupTestServices wires the local backend over in-memory stores and
// returns a cleanup func that resets every package-level service and flag.
func setupTestServices() (*testEnv, func()) {
	env := &testEnv{
		config: memory.NewConfigStore(map[string]any{
			"backends.order": []string{domain.BackendLocal},
		}),
		corpus: memory.NewCorpusStore(),
	}

	settingsService = services.NewSettingsService(env.config, func(string) (string, bool) { return "", false })
	settings, err := settingsService.Get()
	if err != nil {
		panic(err)
	}

	built := backend.Build(*settings, env.corpus)
	engineSettings = *settings
	backendDescriptors = built.Descriptors
	analysisService = services.NewAnalysisService(built.Descriptors, *settings)
	corpusService = services.NewCorpusService(env.corpus, settings.Similarity)
	extractor = extract.Default()

	return env, func() {
		settingsService = nil
		analysisService = nil
		corpusService = nil
		extractor = nil
		backendDescriptors = nil
		engineSettings = domain.Settings{}
		stdin = os.Stdin
		validateCredentials = backend.ValidateCredentials
		resetFlags()
	}
}

// resetFlags restores flag variables, which cobra keeps between runs.
func resetFlags() {
	analyzeFile, analyzeLabel, analyzeBackend = "", "", ""
	analyzeJSON = false
	corpusAddLabel = ""
	corpusListLimit = 20
	corpusShowText, corpusJSON = false, false
	backendsJSON = false
	credentialsNoVerify = false
	watchJSON = false
	verbose, ephemeral = false, false
}

// run executes the root command with args and returns its output.
func run(t *testing.T, input io.Reader, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if input == nil {
		input = strings.NewReader("")
	}
	rootCmd.SetIn(input)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := dir + string(os.PathSeparator) + name
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
