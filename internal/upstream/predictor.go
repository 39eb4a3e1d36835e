package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Predictor asks the price model for an estimate in lakhs.
type Predictor struct {
	baseURL string
	client  *http.Client
}

func NewPredictor(baseURL string, timeout time.Duration) *Predictor {
	return &Predictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

type predictResponse struct {
	PredictedPrice *float64 `json:"predicted_price"`
}

// Predict posts the feature vector to {baseURL}/predict.
func (p *Predictor) Predict(ctx context.Context, features map[string]float64) (float64, error) {
	if p == nil || p.baseURL == "" {
		return 0, ErrNotConfigured
	}
	var out predictResponse
	if err := postJSON(ctx, p.client, p.baseURL+"/predict", features, &out); err != nil {
		return 0, fmt.Errorf("predict price: %w", err)
	}
	if out.PredictedPrice == nil {
		return 0, fmt.Errorf("predict price: %w: missing predicted_price", ErrUnavailable)
	}
	return *out.PredictedPrice, nil
}
