package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driving"
	"github.com/custodia-labs/provenance-cli/internal/core/services"
	"github.com/custodia-labs/provenance-cli/internal/extract"
	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// Services wired by ensureServices. Tests assign them directly.
var (
	settingsService driving.SettingsService
	analysisService driving.AnalysisService
	corpusService   driving.CorpusService
	extractor       *extract.Registry

	// engineSettings and backendDescriptors are what analysisService was
	// built from; analyze --backend narrows them.
	engineSettings     domain.Settings
	backendDescriptors []driven.BackendDescriptor

	closers []func() error
)

// ensureServices wires whatever the command needs. Settings commands only
// need the config store, so a broken config can still be repaired.
func ensureServices(cmd *cobra.Command) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	if isSettingsCommand(cmd) {
		return nil
	}
	return ensureEngine()
}

func ensureSettings() error {
	if settingsService != nil {
		return nil
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService = services.NewSettingsService(store, nil)
	return nil
}

func ensureEngine() error {
	if analysisService != nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := openCorpus(settings.Corpus.Path)
	if err != nil {
		return err
	}
	closers = append(closers, store.Close)

	built := backend.Build(*settings, store)
	for _, w := range built.Warnings {
		logger.Warn("%s", w)
	}

	engineSettings = *settings
	backendDescriptors = built.Descriptors
	analysisService = services.NewAnalysisService(built.Descriptors, *settings)
	corpusService = services.NewCorpusService(store, settings.Similarity)
	if extractor == nil {
		extractor = extract.Default()
	}
	logger.Debug("wired %d backends, corpus ephemeral=%t", len(built.Descriptors), ephemeral)
	return nil
}

// openCorpus opens the SQLite corpus, or an in-memory one with --ephemeral.
func openCorpus(path string) (driven.CorpusStore, error) {
	if ephemeral {
		return memory.NewCorpusStore(), nil
	}
	if path == "" && configDir != "" {
		path = filepath.Join(configDir, "data", sqlite.DefaultFileName)
	}
	store, err := sqlite.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	return store, nil
}

// analysisFor returns the analysis service restricted to one backend.
// An empty name returns the full ranked service.
func analysisFor(name string) (driving.AnalysisService, error) {
	if name == "" {
		return analysisService, nil
	}
	for _, d := range backendDescriptors {
		if d.Name != name {
			continue
		}
		d.Priority = 1
		return services.NewAnalysisService([]driven.BackendDescriptor{d}, engineSettings), nil
	}
	return nil, fmt.Errorf("%w: backend %q is not in backends.order", domain.ErrBackendUnavailable, name)
}

// closeServices releases stores and resets the wiring.
func closeServices() {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("close services: %v", err)
	}

	closers = nil
	settingsService = nil
	analysisService = nil
	corpusService = nil
	backendDescriptors = nil
}

func isSettingsCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == settingsCmd {
			return true
		}
	}
	return false
}
