package services

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables that override stored credentials.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvPlagiarismCheckToken = "PROVENANCE_PLAGIARISMCHECK_TOKEN"
	EnvCopyleaksEmail       = "PROVENANCE_COPYLEAKS_EMAIL"
	EnvCopyleaksKey         = "PROVENANCE_COPYLEAKS_KEY"
	EnvGPTZeroKey           = "PROVENANCE_GPTZERO_KEY"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
	kindSeconds
)

// setting binds a config key to a field of domain.Settings.
type setting struct {
	key    string
	kind   valueKind
	secret bool
	env    string
	get    func(*domain.Settings) any
	set    func(*domain.Settings, any)
}

// SettingsService resolves settings from defaults, the config file and the
// environment, in increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	settings    []setting
}

// NewSettingsService creates a settings service. A nil lookupEnv reads the
// process environment.
func NewSettingsService(configStore driven.ConfigStore, lookupEnv func(string) (string, bool)) *SettingsService {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   lookupEnv,
		settings:    settingTable(),
	}
}

// Get resolves and validates the current settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings, _, err := s.resolve()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}
	return settings, nil
}

// Set parses value according to the key's type, checks the resulting
// settings are valid and persists the value.
func (s *SettingsService) Set(key, value string) error {
	st, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidSettings, key)
	}

	parsed, err := parseValue(st.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidSettings, key, err)
	}

	settings, _, err := s.resolve()
	if err != nil {
		return err
	}
	st.set(settings, parsed)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, storedValue(st.kind, parsed)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetCredentials stores credentials for a remote backend and enables it.
// Copyleaks needs the account email as well as the key.
func (s *SettingsService) SetCredentials(backend, account, apiKey string) error {
	keyName, accountName, ok := credentialKeys(backend)
	if !ok {
		return fmt.Errorf("%w: %q does not take credentials", domain.ErrInvalidSettings, backend)
	}
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: %s key is empty", domain.ErrInvalidSettings, backend)
	}
	if accountName != "" && strings.TrimSpace(account) == "" {
		return fmt.Errorf("%w: %s needs an account email", domain.ErrInvalidSettings, backend)
	}

	if err := s.configStore.Set(keyName, strings.TrimSpace(apiKey)); err != nil {
		return fmt.Errorf("save %s: %w", keyName, err)
	}
	if accountName != "" {
		if err := s.configStore.Set(accountName, strings.TrimSpace(account)); err != nil {
			return fmt.Errorf("save %s: %w", accountName, err)
		}
	}
	enabled := "backends." + backend + ".enabled"
	if err := s.configStore.Set(enabled, true); err != nil {
		return fmt.Errorf("save %s: %w", enabled, err)
	}
	return nil
}

// Entries returns every key with its resolved value and where it came from.
func (s *SettingsService) Entries() ([]domain.SettingEntry, error) {
	settings, sources, err := s.resolve()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SettingEntry, 0, len(s.settings))
	for _, st := range s.settings {
		value := formatValue(st.get(settings))
		if st.secret {
			value = mask(value)
		}
		entries = append(entries, domain.SettingEntry{
			Key:    st.key,
			Value:  value,
			Source: sources[st.key],
		})
	}
	return entries, nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(s.settings))
	for i, st := range s.settings {
		keys[i] = st.key
	}
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// resolve layers the config file and the environment over the defaults.
// The result is not validated.
func (s *SettingsService) resolve() (*domain.Settings, map[string]domain.SettingSource, error) {
	settings := domain.DefaultSettings()
	for _, name := range domain.KnownBackends() {
		if name != domain.BackendLocal {
			settings.Backends.Remote[name] = domain.RemoteSettings{Enabled: true}
		}
	}

	sources := make(map[string]domain.SettingSource, len(s.settings))
	for _, st := range s.settings {
		sources[st.key] = domain.SourceDefault

		if _, exists := s.configStore.Get(st.key); exists {
			st.set(&settings, s.read(st))
			sources[st.key] = domain.SourceFile
		}
		if st.env == "" {
			continue
		}
		if v, ok := s.lookupEnv(st.env); ok && strings.TrimSpace(v) != "" {
			st.set(&settings, strings.TrimSpace(v))
			sources[st.key] = domain.SourceEnvironment
		}
	}
	return &settings, sources, nil
}

// read fetches a stored value with the getter matching its kind.
func (s *SettingsService) read(st setting) any {
	switch st.kind {
	case kindInt:
		return s.configStore.GetInt(st.key)
	case kindFloat:
		return s.configStore.GetFloat(st.key)
	case kindBool:
		return s.configStore.GetBool(st.key)
	case kindList:
		return s.configStore.GetStringSlice(st.key)
	case kindSeconds:
		return seconds(s.configStore.GetFloat(st.key))
	default:
		return s.configStore.GetString(st.key)
	}
}

func (s *SettingsService) lookup(key string) (setting, bool) {
	for _, st := range s.settings {
		if st.key == key {
			return st, true
		}
	}
	return setting{}, false
}

// credentialKeys returns the config keys holding a backend's API key and,
// where one is needed, its account.
func credentialKeys(backend string) (key, account string, ok bool) {
	switch backend {
	case domain.BackendPlagiarismCheck:
		return "backends.plagiarismcheck.token", "", true
	case domain.BackendCopyleaks:
		return "backends.copyleaks.key", "backends.copyleaks.email", true
	case domain.BackendGPTZero:
		return "backends.gptzero.key", "", true
	default:
		return "", "", false
	}
}

func parseValue(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindList:
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case kindSeconds:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%q is not a positive number of seconds", value)
		}
		return seconds(f), nil
	default:
		return value, nil
	}
}

// storedValue converts a parsed value into its config file representation.
func storedValue(kind valueKind, v any) any {
	if kind == kindSeconds {
		return v.(time.Duration).Seconds()
	}
	return v
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case time.Duration:
		return strconv.FormatFloat(val.Seconds(), 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
