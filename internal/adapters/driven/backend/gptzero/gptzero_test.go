package gptzero

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/remote"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

var longText = strings.Repeat("This sentence is long enough for the scoring service. ", 3)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	b, err := New(Config{APIKey: "gz-key", BaseURL: server.URL})
	require.NoError(t, err)
	return b
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBackend_Identity(t *testing.T) {
	b, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gptzero", b.Name())
	assert.Equal(t, domain.MeasureAI, b.Measures())
	assert.NotNil(t, b.Limiter())
}

func TestSubmit_ClassProbabilities(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/predict/text", r.URL.Path)
		assert.Equal(t, "gz-key", r.Header.Get("x-api-key"))

		var req predictRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, longText, req.Document)

		_, _ = w.Write([]byte(`{"documents":[{"class_probabilities":{"ai":0.82,"human":0.1,"mixed":0.08},` +
			`"average_generated_prob":0.5,"confidence_category":"high"}]}`))
	})

	score, err := b.Submit(context.Background(), longText)
	require.NoError(t, err)
	assert.InDelta(t, 82.0, score.AIPercent, 1e-9)
	assert.Equal(t, domain.MeasureAI, score.Measured)
	assert.Equal(t, domain.ConfidenceHigh, score.AIConfidence)
	assert.Zero(t, score.PlagiarismPercent)
	assert.Equal(t, Method, score.Method)
}

func TestSubmit_AverageGeneratedProb(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documents":[{"average_generated_prob":0.25}]}`))
	})

	score, err := b.Submit(context.Background(), longText)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, score.AIPercent, 1e-9)
	assert.Equal(t, domain.ConfidenceMedium, score.AIConfidence)
}

func TestSubmit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorised", http.StatusUnauthorized, `{"error":"invalid key"}`, "gptzero error (status 401)"},
		{"server error", http.StatusInternalServerError, `oops`, "gptzero error (status 500)"},
		{"no documents", http.StatusOK, `{"documents":[]}`, "no documents"},
		{"no probability", http.StatusOK, `{"documents":[{}]}`, "no generated probability"},
		{"bad json", http.StatusOK, `{`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := b.Submit(context.Background(), longText)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := b.Submit(context.Background(), longText)
	assert.True(t, remote.IsRateLimited(err))
	assert.True(t, b.Limiter().BackingOff())
}

func TestSubmit_TooShort(t *testing.T) {
	called := false
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := b.Submit(context.Background(), "too short")
	assert.Error(t, err)
	assert.False(t, called)
}

func TestPing(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gz-key", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`["base"]`))
	})
	assert.NoError(t, b.Ping(context.Background()))
}
