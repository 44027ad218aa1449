package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/vecdocs/internal/adapters/driven/cache/ristretto"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vecdocs/internal/adapters/driven/watch"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driving"
	"github.com/custodia-labs/vecdocs/internal/core/services"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// Services used by the commands. Tests inject their own and set servicesInjected.
var (
	searchService   driving.SearchService
	documentService driving.DocumentService
	settingsService driving.SettingsService

	// configPath is the config file shown by "config path".
	configPath string

	servicesInjected bool
)

// storage describes the opened collection, for change watching.
type storage struct {
	corpus  *services.Corpus
	backend domain.StorageBackend
	dataDir string
}

var (
	opened  *storage
	closers []func() error
)

func addCloser(fn func() error) {
	closers = append(closers, fn)
}

// closeServices releases everything opened by initServices, newest first.
func closeServices() {
	for _, fn := range slices.Backward(closers) {
		if err := fn(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	closers = nil
	opened = nil
}

// envFlagOverrides maps persistent flags onto the environment keys the
// settings service reads, so flags win over both the config file and the environment.
func envFlagOverrides(getenv func(string) string) func(string) string {
	return func(key string) string {
		switch {
		case key == "VECDOCS_BACKEND" && backend != "":
			return backend
		case key == "VECDOCS_DATA_DIR" && dataDir != "":
			return dataDir
		}
		return getenv(key)
	}
}

func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return file.DefaultConfigDir()
}

// loadEnvFiles loads .env from the working directory, then from the config dir.
// Variables already set in the environment are kept.
func loadEnvFiles(dir string) {
	for _, path := range []string{".env", filepath.Join(dir, ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("load %s: %v", path, err)
		}
	}
}

func initSettings() error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	loadEnvFiles(dir)

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	svc := services.NewSettingsService(store)
	svc.SetEnvLookup(envFlagOverrides(os.Getenv))

	settingsService = svc
	configPath = store.Path()
	return nil
}

func initServices() error {
	logger.Section("Initialising services")

	if err := initSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	dir := settings.Storage.DataDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(configPath), "data")
	}

	store, err := openCollectionStore(settings.Storage.Backend, dir)
	if err != nil {
		return err
	}
	addCloser(store.Close)
	logger.Debug("Storage: %s at %s", settings.Storage.Backend, store.Location())

	corpus := services.NewCorpus(store)
	opened = &storage{corpus: corpus, backend: settings.Storage.Backend, dataDir: dir}

	var embedCache driven.EmbeddingCache
	if settings.Cache.Enabled {
		snapshots, err := ristretto.NewSnapshotCache()
		if err != nil {
			return fmt.Errorf("create snapshot cache: %w", err)
		}
		addCloser(func() error {
			snapshots.Close()
			return nil
		})
		corpus.SetSnapshotCache(snapshots)

		embeddings, err := ristretto.NewEmbeddingCache(settings.Cache.MaxCost)
		if err != nil {
			return fmt.Errorf("create embedding cache: %w", err)
		}
		addCloser(func() error {
			embeddings.Close()
			return nil
		})
		embedCache = embeddings
	}

	embedder, err := newEmbedder(settings.Embedding)
	if err != nil {
		return err
	}

	search := services.NewSearchService(corpus, services.NewRanker(settings.Search.Workers), embedder)
	search.SetDefaultLimit(settings.Search.DefaultLimit)
	if embedCache != nil {
		search.SetEmbeddingCache(embedCache)
	}

	searchService = search
	documentService = services.NewDocumentService(corpus, embedder)
	return nil
}

func openCollectionStore(b domain.StorageBackend, dir string) (driven.CollectionStore, error) {
	var (
		store driven.CollectionStore
		err   error
	)
	switch b {
	case domain.StorageJSONFile:
		store, err = jsonfile.NewStore(dir)
	case domain.StorageSQLite:
		store, err = sqlite.NewStore(dir)
	case domain.StorageBadger:
		store, err = badger.NewStore(dir)
	case domain.StorageMemory:
		store = memory.NewCollectionStore()
	default:
		return nil, domain.NewValidationError("unknown backend %q", b)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", b, err)
	}
	return store, nil
}

// newEmbedder returns nil when no provider is configured.
// The result is a nil interface, never a typed nil pointer.
func newEmbedder(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if cfg.Provider == "" {
		logger.Debug("Embedding: no provider configured")
		return nil, nil
	}
	if !cfg.IsConfigured() {
		logger.Warn("embedding provider %s is missing an API key; text queries are disabled", cfg.Provider)
		return nil, nil
	}

	var embedder driven.EmbeddingService
	switch cfg.Provider {
	case domain.AIProviderOllama:
		embedder = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	case domain.AIProviderOpenAI:
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
			MaxRetries:        -1,
		})
		if err != nil {
			return nil, fmt.Errorf("create embedding service: %w", err)
		}
		embedder = svc
	default:
		return nil, domain.NewValidationError("unknown embedding provider %q", cfg.Provider)
	}

	addCloser(embedder.Close)
	logger.Debug("Embedding: %s (%s, %d dimensions)", cfg.Provider, embedder.ModelName(), embedder.Dimensions())
	return embedder, nil
}

// startWatcher invalidates cached snapshots when another process rewrites
// the collection. Only file-backed stores that other processes can open are watched.
func startWatcher(ctx context.Context) {
	if opened == nil {
		return
	}

	var names []string
	switch opened.backend {
	case domain.StorageJSONFile:
		names = []string{jsonfile.FileName}
	case domain.StorageSQLite:
		names = []string{sqlite.DatabaseFileName, sqlite.DatabaseFileName + "-wal"}
	default:
		return
	}

	w, err := watch.New(opened.dataDir, names...)
	if err != nil {
		logger.Warn("watch %s: %v", opened.dataDir, err)
		return
	}
	addCloser(w.Close)

	corpus := opened.corpus
	go func() {
		if err := w.Watch(ctx, corpus.Invalidate); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watcher stopped: %v", err)
		}
	}()
	logger.Debug("Watching %s for external changes", opened.dataDir)
}
