package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPInterpreter calls an external natural-language interpretation service
// over HTTP. The service takes raw text and answers with a structured
// product list plus a human-readable reply.
type HTTPInterpreter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPInterpreter creates an interpreter client for the given base URL.
func NewHTTPInterpreter(baseURL string, timeout time.Duration) *HTTPInterpreter {
	return &HTTPInterpreter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Interpret posts the query and decodes the normalized result.
func (i *HTTPInterpreter) Interpret(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(map[string]string{"query": text})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/interpret", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call interpreter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("interpreter returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode interpreter response: %w", err)
	}
	return &result, nil
}
