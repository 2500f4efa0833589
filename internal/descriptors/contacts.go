package descriptors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/chunkalign/internal/logging"
)

type contactsResponse struct {
	Contacts [][]float64 `json:"contacts"`
}

// HTTPContactPredictor requests contact maps from a model host exposing
// POST /api/contacts.
type HTTPContactPredictor struct {
	Client  *http.Client
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewHTTPContactPredictor returns a predictor for the host at baseURL.
func NewHTTPContactPredictor(baseURL, model string, timeout time.Duration) *HTTPContactPredictor {
	return &HTTPContactPredictor{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Timeout: timeout,
	}
}

// PredictContacts implements ContactPredictor.
func (p *HTTPContactPredictor) PredictContacts(ctx context.Context, sequence string) ([][]float64, error) {
	if strings.TrimSpace(p.BaseURL) == "" {
		return nil, fmt.Errorf("structural host is empty")
	}
	payload := map[string]any{
		"model":    p.Model,
		"sequence": sequence,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal contacts request: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/contacts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create contacts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	logging.LogRequest("out", p.BaseURL, p.Model, "/api/contacts", map[string]any{"model": p.Model, "residues": len(sequence)})

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacts request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read contacts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contacts request failed: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var parsed contactsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse contacts response: %w", err)
	}
	if len(parsed.Contacts) == 0 {
		return nil, fmt.Errorf("contacts response returned empty map")
	}
	return parsed.Contacts, nil
}
