package driving

import "github.com/custodia-labs/provenance-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings from defaults, the config file
	// and the environment. The result is validated.
	Get() (*domain.Settings, error)

	// Set parses value according to the key's type and persists it.
	Set(key, value string) error

	// SetCredentials stores credentials for a remote backend and enables it.
	SetCredentials(backend, account, apiKey string) error

	// Entries returns every key with its resolved value and source.
	// Credentials are masked.
	Entries() ([]domain.SettingEntry, error)

	// Keys returns every settable key in display order.
	Keys() []string

	// Path returns the configuration file path.
	Path() string
}
