package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyStorageBackend     = "storage.backend"
	KeyStorageDataDir     = "storage.data_dir"
	KeySearchDefaultLimit = "search.default_limit"
	KeySearchWorkers      = "search.workers"
	KeyCacheEnabled       = "cache.enabled"
	KeyCacheMaxCost       = "cache.max_cost"
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedDimensions    = "embedding.dimensions"
	KeyEmbedRPS           = "embedding.requests_per_second"
)

// providerNone disables the embedding provider.
const providerNone = "none"

// envOverrides maps environment variables onto config keys.
// Environment values win over the config file.
var envOverrides = map[string]string{
	"VECDOCS_BACKEND":            KeyStorageBackend,
	"VECDOCS_DATA_DIR":           KeyStorageDataDir,
	"VECDOCS_EMBEDDING_PROVIDER": KeyEmbedProvider,
	"VECDOCS_EMBEDDING_MODEL":    KeyEmbedModel,
	"VECDOCS_EMBEDDING_BASE_URL": KeyEmbedBaseURL,
	"VECDOCS_EMBEDDING_API_KEY":  KeyEmbedAPIKey,
}

// SettingKeys returns every recognised config key, in display order.
func SettingKeys() []string {
	return []string{
		KeyStorageBackend,
		KeyStorageDataDir,
		KeySearchDefaultLimit,
		KeySearchWorkers,
		KeyCacheEnabled,
		KeyCacheMaxCost,
		KeyEmbedProvider,
		KeyEmbedModel,
		KeyEmbedBaseURL,
		KeyEmbedAPIKey,
		KeyEmbedDimensions,
		KeyEmbedRPS,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Tests pass a map-backed func.
func (s *SettingsService) SetEnvLookup(fn func(string) string) {
	if fn == nil {
		fn = func(string) string { return "" }
	}
	s.getenv = fn
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.getString(KeyStorageDataDir, defaults.Storage.DataDir),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(KeySearchDefaultLimit, defaults.Search.DefaultLimit),
			Workers:      s.getInt(KeySearchWorkers, defaults.Search.Workers),
		},
		Cache: domain.CacheSettings{
			Enabled: s.getBool(KeyCacheEnabled, defaults.Cache.Enabled),
			MaxCost: int64(s.getInt(KeyCacheMaxCost, int(defaults.Cache.MaxCost))),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(),
			BaseURL:           s.getString(KeyEmbedBaseURL, ""),
			APIKey:            s.getString(KeyEmbedAPIKey, ""),
			Dimensions:        s.getInt(KeyEmbedDimensions, 0),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, 0),
		},
	}

	settings.Embedding.Model = s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = s.getenv("OPENAI_API_KEY")
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyStorageBackend, settings.Storage.Backend.String()},
		{KeyStorageDataDir, settings.Storage.DataDir},
		{KeySearchDefaultLimit, settings.Search.DefaultLimit},
		{KeySearchWorkers, settings.Search.Workers},
		{KeyCacheEnabled, settings.Cache.Enabled},
		{KeyCacheMaxCost, settings.Cache.MaxCost},
		{KeyEmbedProvider, providerValue(settings.Embedding.Provider)},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyEmbedDimensions, settings.Embedding.Dimensions},
		{KeyEmbedRPS, settings.Embedding.RequestsPerSecond},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so an env-provided key never lands on disk.
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.getenv("OPENAI_API_KEY") {
		if err := s.configStore.Set(KeyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyEmbedAPIKey, err)
		}
	}

	return nil
}

// Set parses value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var parsed any
	switch key {
	case KeyStorageBackend:
		backend := domain.StorageBackend(value)
		if !backend.IsValid() {
			return domain.NewValidationError("invalid storage backend %q", value)
		}
		parsed = value

	case KeyEmbedProvider:
		if value != "" && value != providerNone && !domain.AIProvider(value).IsValid() {
			return domain.NewValidationError("invalid embedding provider %q", value)
		}
		parsed = value

	case KeyStorageDataDir, KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedAPIKey:
		parsed = value

	case KeySearchDefaultLimit, KeySearchWorkers:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return domain.NewValidationError("%s must be a positive integer, got %q", key, value)
		}
		parsed = n

	case KeyCacheMaxCost, KeyEmbedDimensions:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return domain.NewValidationError("%s must be a non-negative integer, got %q", key, value)
		}
		parsed = n

	case KeyCacheEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return domain.NewValidationError("%s must be true or false, got %q", key, value)
		}
		parsed = b

	case KeyEmbedRPS:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return domain.NewValidationError("%s must be a non-negative number, got %q", key, value)
		}
		parsed = f

	default:
		return domain.NewValidationError("unknown setting %q", key)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend)
	}
	if settings.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search.default_limit must be positive, got %d", settings.Search.DefaultLimit)
	}
	if settings.Search.Workers <= 0 {
		return fmt.Errorf("search.workers must be positive, got %d", settings.Search.Workers)
	}

	emb := settings.Embedding
	if emb.Provider != "" && !emb.IsConfigured() {
		return fmt.Errorf("embedding provider %q requires an API key (set embedding.api_key or OPENAI_API_KEY)",
			emb.Provider.Description())
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func providerValue(p domain.AIProvider) string {
	if p == "" {
		return providerNone
	}
	return p.String()
}

// Helper methods for reading config with env overrides and defaults.

func (s *SettingsService) lookup(key string) string {
	for env, k := range envOverrides {
		if k == key {
			if v := strings.TrimSpace(s.getenv(env)); v != "" {
				return v
			}
		}
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.lookup(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.lookup(KeyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getProvider() domain.AIProvider {
	provider := domain.AIProvider(s.lookup(KeyEmbedProvider))
	if !provider.IsValid() {
		return ""
	}
	return provider
}
