package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultOllamaModel, req.Model)
		assert.Equal(t, "hej", req.Prompt)

		vec := make([]float64, DefaultOllamaDimensions)
		vec[0] = 0.25
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: vec})
	}))
	defer srv.Close()

	o := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})
	vec, err := o.Embed(context.Background(), "hej")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultOllamaDimensions)
	assert.Equal(t, float32(0.25), vec[0])
}

func TestOllamaEmbedderErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "wrong dimension",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float64{1, 2, 3}})
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL}).Embed(context.Background(), "x")
			assert.Error(t, err)
		})
	}
}
