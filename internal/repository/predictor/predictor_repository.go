package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"postPilot/business/optimizer"
	"postPilot/pkg/config"
)

// PredictorRepository calls the external engagement predictor over HTTP.
// It implements optimizer.Scorer; the gateway above it owns timeouts,
// caching, and degradation, so this client stays a thin request/response
// mapper.
type PredictorRepository struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

var _ optimizer.Scorer = (*PredictorRepository)(nil)

func NewPredictorRepository(cfg config.PredictorConfig) *PredictorRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &PredictorRepository{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

type predictRequest struct {
	Content string `json:"content"`
}

type predictResponse struct {
	PredictedRate float64 `json:"predicted_rate"`
}

// Predict scores one piece of content. The returned rate is raw; the
// gateway validates range.
func (r *PredictorRepository) Predict(ctx context.Context, content string) (float64, error) {
	if r.baseURL == "" {
		return 0, fmt.Errorf("predictor base URL is not configured")
	}

	payload, err := json.Marshal(predictRequest{Content: content})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("predictor returned status %d", resp.StatusCode)
	}

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode predict response: %w", err)
	}

	return body.PredictedRate, nil
}
