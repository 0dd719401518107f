// Package sentiment classifies review text through an external service and
// attaches the result to orders after the fact, off the review write path.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

// Classifier turns review text into a label/score pair.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.Sentiment, error)
}

// HTTPClassifier calls an external classification service.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier creates a classifier client for the given base URL.
func NewHTTPClassifier(baseURL string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Classify posts the text and decodes the label/score response.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (*models.Sentiment, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call sentiment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment service returned status %d", resp.StatusCode)
	}

	var s models.Sentiment
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode sentiment response: %w", err)
	}
	return &s, nil
}
