package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

func TestParseEmbedding(t *testing.T) {
	vec, err := parseEmbedding("[0.5, -1, 2e-1]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 0.2}, vec)

	_, err = parseEmbedding("0.5, 1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = parseEmbedding(`["a"]`)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-1...cdef", maskAPIKey("sk-1234567890abcdef"))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "1.50ms", formatElapsed(1500*time.Microsecond))
	assert.Equal(t, "0.00ms", formatElapsed(0))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine("a\n b\t\tc  "))
}

func TestReadJSONL(t *testing.T) {
	input := "\n" + `{"text": "a", "embedding": [1]}` + "\n\n" + `{"text": "b", "category": "own"}` + "\n"

	reqs, lines, err := readJSONL(strings.NewReader(input), "in", "fallback")

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, []int{2, 4}, lines)
	assert.Equal(t, "fallback", reqs[0].Category)
	assert.Equal(t, []float32{1}, reqs[0].Embedding)
	assert.Equal(t, "own", reqs[1].Category)
}

func TestEnvFlagOverrides(t *testing.T) {
	oldBackend, oldDataDir := backend, dataDir
	defer func() { backend, dataDir = oldBackend, oldDataDir }()

	env := map[string]string{"VECDOCS_BACKEND": "jsonfile", "OTHER": "x"}
	getenv := envFlagOverrides(func(k string) string { return env[k] })

	backend, dataDir = "", ""
	assert.Equal(t, "jsonfile", getenv("VECDOCS_BACKEND"))
	assert.Empty(t, getenv("VECDOCS_DATA_DIR"))

	backend, dataDir = "sqlite", "/data"
	assert.Equal(t, "sqlite", getenv("VECDOCS_BACKEND"))
	assert.Equal(t, "/data", getenv("VECDOCS_DATA_DIR"))
	assert.Equal(t, "x", getenv("OTHER"))
}

func TestCloseServices_RunsNewestFirst(t *testing.T) {
	var order []int
	addCloser(func() error { order = append(order, 1); return nil })
	addCloser(func() error { order = append(order, 2); return errors.New("ignored") })
	addCloser(func() error { order = append(order, 3); return nil })

	closeServices()

	assert.Equal(t, []int{3, 2, 1}, order)
	assert.Empty(t, closers)
}

func TestOpenCollectionStore(t *testing.T) {
	store, err := openCollectionStore(domain.StorageMemory, t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = openCollectionStore("tape", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewEmbedder_NoProvider(t *testing.T) {
	embedder, err := newEmbedder(domain.EmbeddingSettings{})

	require.NoError(t, err)
	assert.Nil(t, embedder)
}
