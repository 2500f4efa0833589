// Package embedding fetches chunk embedding vectors from an external model
// host.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/chunkalign/internal/chunks"
	"github.com/mwiater/chunkalign/internal/logging"
)

// ErrNoEmbedder is returned by Fill when chunks lack embeddings and no
// Embedder is configured.
var ErrNoEmbedder = errors.New("no embedder configured")

// Embedder turns a residue string into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// HTTPEmbedder posts {model, prompt} to <Host>/api/embeddings.
type HTTPEmbedder struct {
	Client  *http.Client
	Host    string
	Model   string
	Timeout time.Duration
}

// NewHTTPEmbedder returns an embedder for host.
func NewHTTPEmbedder(host, model string, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		Client:  &http.Client{},
		Host:    strings.TrimRight(host, "/"),
		Model:   model,
		Timeout: timeout,
	}
}

// Embed requests an embedding vector for text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(e.Model) == "" {
		return nil, fmt.Errorf("embedding model is empty")
	}
	if strings.TrimSpace(e.Host) == "" {
		return nil, fmt.Errorf("embedding host is empty")
	}
	payload := map[string]any{
		"model":  e.Model,
		"prompt": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	logging.LogRequest("out", e.Host, e.Model, "/api/embeddings", payload)

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response returned empty vector")
	}

	return parsed.Embedding, nil
}

// Fill embeds every chunk that has no embedding yet, in place. It returns the
// number of chunks embedded. Any failure aborts the fill.
func Fill(ctx context.Context, e Embedder, cs []chunks.Chunk) (int, error) {
	filled := 0
	for i := range cs {
		if len(cs[i].Embedding) > 0 {
			continue
		}
		if e == nil {
			return filled, fmt.Errorf("chunk %s#%d has no embedding: %w", cs[i].EntityID, cs[i].Index, ErrNoEmbedder)
		}
		vec, err := e.Embed(ctx, cs[i].Sequence)
		if err != nil {
			return filled, fmt.Errorf("embed chunk %s#%d: %w", cs[i].EntityID, cs[i].Index, err)
		}
		cs[i].Embedding = vec
		filled++
	}
	if filled > 0 {
		logging.LogEvent("[EMBED] embedded %d chunks", filled)
	}
	return filled, nil
}
