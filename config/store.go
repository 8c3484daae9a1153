package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/companion-cli/companion/providers"
	"github.com/spf13/viper"
)

// SettingsStore is an opaque key-value persistence capability for
// credentials and session settings. It is passed into constructors
// explicitly rather than living as ambient process-wide state.
type SettingsStore interface {
	Get(key string) string
	Set(key string, value any)
	Persist() error
}

// fileStore is a SettingsStore backed by a JSON file.
type fileStore struct {
	path  string
	state *viper.Viper
}

// NewFileStore opens (or lazily creates) a settings store at path. If
// path is empty, the default user settings location is used
// (<user config dir>/companion/settings.json).
func NewFileStore(path string) (SettingsStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot find config directory: %w", err)
		}
		path = filepath.Join(configDir, "companion", "settings.json")
	}

	state := viper.New()
	state.SetConfigFile(path)
	state.SetConfigType("json")
	// A missing settings file is not an error; Get returns empty values
	// until something is persisted.
	_ = state.ReadInConfig()

	return &fileStore{path: path, state: state}, nil
}

func (s *fileStore) Get(key string) string {
	return s.state.GetString(key)
}

func (s *fileStore) Set(key string, value any) {
	s.state.Set(key, value)
}

func (s *fileStore) Persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("cannot create settings directory: %w", err)
	}
	if err := s.state.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("cannot write settings: %w", err)
	}
	return nil
}

// ApplyStoredCredentials fills the provider config from the store when
// no API key was supplied by file, flags or environment. Local providers
// (ollama) need no key, so an empty key is not an error for them.
func ApplyStoredCredentials(aiConfig *providers.AIProviderConfig, store SettingsStore) error {
	if aiConfig.ApiKey != "" || aiConfig.Provider == "ollama" {
		return nil
	}

	apiKey, provider, err := LoadAPISettings(store)
	if err != nil {
		return err
	}

	aiConfig.ApiKey = apiKey
	if aiConfig.Provider == "" {
		aiConfig.Provider = provider
	}
	return nil
}

// LoadAPISettings resolves the API key and provider name from a store.
// A missing key surfaces as a "not configured" error rather than being
// interpreted further.
func LoadAPISettings(store SettingsStore) (apiKey string, provider string, err error) {
	apiKey = store.Get("api_key")
	if apiKey == "" {
		return "", "", fmt.Errorf("API settings not configured: set an api_key via configuration or the settings store")
	}

	provider = store.Get("provider")
	if provider == "" {
		provider = "mistral"
	}

	return apiKey, provider, nil
}
