package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Enhancer rewrites a listing description through a text-generation service.
type Enhancer struct {
	url    string
	client *http.Client
}

func NewEnhancer(url string, timeout time.Duration) *Enhancer {
	return &Enhancer{url: url, client: newHTTPClient(timeout)}
}

type enhanceRequest struct {
	Prompt string `json:"prompt"`
}

type enhanceResponse struct {
	Enhanced *string `json:"enhanced"`
}

func (e *Enhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	if e == nil || e.url == "" {
		return "", ErrNotConfigured
	}
	var out enhanceResponse
	if err := postJSON(ctx, e.client, e.url, enhanceRequest{Prompt: prompt}, &out); err != nil {
		return "", fmt.Errorf("enhance description: %w", err)
	}
	if out.Enhanced == nil {
		return "", fmt.Errorf("enhance description: %w: missing enhanced", ErrUnavailable)
	}
	return *out.Enhanced, nil
}
