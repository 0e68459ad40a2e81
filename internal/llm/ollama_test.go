package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/seobrief/internal/config"
)

func newOllamaServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2"}]}`))
		case "/api/generate":
			var req ollamaGenerateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Model != "llama3.2" || req.Format != "json" || req.Stream {
				http.Error(w, "unexpected request", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: reply, Done: true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaGenerate(t *testing.T) {
	srv := newOllamaServer(t, "```json\n[{\"keyword\":\"yoga mat\"}]\n```")

	model := NewOllama(OllamaOptions{BaseURL: srv.URL + "/", Model: "llama3.2", JSON: true})
	out, err := model.Generate(context.Background(), "suggest keywords")

	require.NoError(t, err)
	assert.Equal(t, `[{"keyword":"yoga mat"}]`, out)
	assert.Equal(t, "llama3.2", model.Name())
}

func TestOllamaEmptyReply(t *testing.T) {
	srv := newOllamaServer(t, "   ")

	_, err := NewOllama(OllamaOptions{BaseURL: srv.URL, Model: "llama3.2", JSON: true}).
		Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllamaModels(t *testing.T) {
	srv := newOllamaServer(t, "")

	names, err := NewOllama(OllamaOptions{BaseURL: srv.URL}).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2"}, names)
}

func TestNewOllamaFromConfig(t *testing.T) {
	srv := newOllamaServer(t, "ok")

	model, err := New(context.Background(), config.LLMConfig{
		Provider:  ProviderOllama,
		Model:     "llama3.2",
		OllamaURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", model.Name())
}

func TestNewOllamaNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(context.Background(), config.LLMConfig{
		Provider:  ProviderOllama,
		Model:     "llama3.2",
		OllamaURL: url,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama not running")
}
