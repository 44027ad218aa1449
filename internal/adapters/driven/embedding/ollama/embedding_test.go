package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{BaseURL: srv.URL + "/", Model: "test-embed"})
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_Success(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)
		assert.Equal(t, []string{"one", "two"}, req.Input)

		_ = json.NewEncoder(w).Encode(embedResponse{
			Model:      req.Model,
			Embeddings: [][]float32{{1, 0}, {0, 1}},
		})
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestEmbed_Single(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.5,0.25]]}`))
	})

	vec, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	vecs, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedBatch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, "model not loaded", "status 500: model not loaded"},
		{"bad json", http.StatusOK, "{", "decode response"},
		{"count mismatch", http.StatusOK, `{"embeddings":[[1]]}`, "got 1 embeddings for 2 texts"},
		{"empty vector", http.StatusOK, `{"embeddings":[[1],[]]}`, "empty embedding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEmbed_DimensionCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2,3]]}`))
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 4})

	_, err := svc.Embed(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 4")
}

func TestEmbed_RateLimitedBacksOff(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[]}`))
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("unavailable", func(t *testing.T) {
		svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		assert.Error(t, svc.Ping(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})
		assert.Error(t, svc.Ping(context.Background()))
	})
}
