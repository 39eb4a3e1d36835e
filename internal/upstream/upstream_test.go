package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictorPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var features map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&features))
		assert.Equal(t, 1200.0, features["Area"])

		_, _ = w.Write([]byte(`{"predicted_price": 85.5}`))
	}))
	defer srv.Close()

	p := NewPredictor(srv.URL+"/", time.Second)
	got, err := p.Predict(context.Background(), map[string]float64{"Area": 1200})
	require.NoError(t, err)
	assert.Equal(t, 85.5, got)
}

func TestPredictorFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non 2xx", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad input"}`))
		}},
		{"missing field", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"price": 1}`))
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewPredictor(srv.URL, time.Second).Predict(context.Background(), nil)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestPredictorTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPredictor(url, time.Second).Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNotConfigured(t *testing.T) {
	_, err := NewPredictor("", time.Second).Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewEnhancer("", time.Second).Enhance(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var p *Predictor
	_, err = p.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEnhancerEnhance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2BHK near park", body["prompt"])
		_, _ = w.Write([]byte(`{"enhanced": "A bright two bedroom home beside the park."}`))
	}))
	defer srv.Close()

	got, err := NewEnhancer(srv.URL, time.Second).Enhance(context.Background(), "2BHK near park")
	require.NoError(t, err)
	assert.Equal(t, "A bright two bedroom home beside the park.", got)
}

func TestEnhancerMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewEnhancer(srv.URL, time.Second).Enhance(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
