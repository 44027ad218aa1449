package domain

const unknownDescription = "Unknown"

// StorageBackend identifies where the collection is persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageJSONFile keeps the collection in a single JSON file, replaced atomically.
	StorageJSONFile StorageBackend = "jsonfile"

	// StorageSQLite keeps the collection in an SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageBadger keeps the collection in a BadgerDB key-value store.
	StorageBadger StorageBackend = "badger"

	// StorageMemory keeps the collection in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageJSONFile, StorageSQLite, StorageBadger, StorageMemory:
		return true
	default:
		return false
	}
}

// IsDurable returns true if the backend survives process restarts.
func (b StorageBackend) IsDurable() bool {
	return b.IsValid() && b != StorageMemory
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageJSONFile:
		return "JSON file (atomic replace)"
	case StorageSQLite:
		return "SQLite database"
	case StorageBadger:
		return "BadgerDB key-value store"
	case StorageMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend selects the collection store.
	Backend StorageBackend

	// DataDir is the directory holding persisted data.
	// Empty means ~/.vecdocs/data.
	DataDir string
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultLimit is used when a request does not set a limit.
	DefaultLimit int

	// Workers is the number of goroutines scoring a query. 1 scores sequentially.
	Workers int
}

// CacheSettings holds read-through cache configuration.
type CacheSettings struct {
	// Enabled turns on the snapshot and query-embedding caches.
	Enabled bool

	// MaxCost bounds the embedding cache, in stored float32 values.
	MaxCost int64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider. Empty disables text embedding.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the expected vector size. Zero uses the model default.
	Dimensions int

	// RequestsPerSecond throttles provider calls. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Search    SearchSettings
	Cache     CacheSettings
	Embedding EmbeddingSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured; callers then supply vectors directly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageJSONFile,
		},
		Search: SearchSettings{
			DefaultLimit: DefaultSearchLimit,
			Workers:      1,
		},
		Cache: CacheSettings{
			Enabled: true,
			MaxCost: 1 << 22,
		},
		Embedding: EmbeddingSettings{},
	}
}

// AllStorageBackends returns every supported storage backend.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageJSONFile,
		StorageSQLite,
		StorageBadger,
		StorageMemory,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
