package plagiarismcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/remote"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

const reportJSON = `{"data":{"report_data":{"matched_percent":37.5,"sources_count":1,"matched_length":120,` +
	`"sources":[{"url":"https://example.org/a","plagiarism_percent":30},{"title":"Book B","plagiarism_percent":7.5}]}}}`

type fakeAPI struct {
	notReady  int32
	aiStatus  int
	aiBody    string
	submitted atomic.Value
	polls     atomic.Int32
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pc-token", r.Header.Get("X-API-TOKEN"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/text":
			assert.NoError(t, r.ParseForm())
			f.submitted.Store(r.PostForm.Get("text"))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"data":{"text":{"id":77,"report_id":5}}}`))

		case r.Method == http.MethodGet && r.URL.Path == "/text/report/77":
			if f.polls.Add(1) <= f.notReady {
				_, _ = w.Write([]byte(`{"data":{"report_data":null}}`))
				return
			}
			_, _ = w.Write([]byte(reportJSON))

		case r.Method == http.MethodPost && r.URL.Path == "/chat-gpt":
			status := f.aiStatus
			if status == 0 {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			_, _ = w.Write([]byte(f.aiBody))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestBackend(t *testing.T, api *fakeAPI) *Backend {
	t.Helper()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	b, err := New(Config{
		Token:        "pc-token",
		BaseURL:      server.URL,
		PollInterval: 5 * time.Millisecond,
		RateLimit:    remote.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100},
	})
	require.NoError(t, err)
	return b
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBackend_Identity(t *testing.T) {
	b, err := New(Config{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "plagiarismcheck", b.Name())
	assert.Equal(t, domain.MeasureAll, b.Measures())
}

func TestSubmit_BothDimensions(t *testing.T) {
	api := &fakeAPI{notReady: 2, aiBody: `{"ai_score": 64}`}
	b := newTestBackend(t, api)

	score, err := b.Submit(context.Background(), "Some submitted essay text about rivers.")
	require.NoError(t, err)

	assert.Equal(t, 37.5, score.PlagiarismPercent)
	assert.Equal(t, 64.0, score.AIPercent)
	assert.Equal(t, domain.MeasureAll, score.Measured)
	assert.Equal(t, 2, score.SourcesFound)
	require.Len(t, score.Matches, 2)
	assert.Equal(t, "https://example.org/a", score.Matches[0].SourceLabel)
	assert.Equal(t, "Book B", score.Matches[1].SourceLabel)
	assert.Equal(t, domain.LayerRemote, score.Matches[0].Layer)
	assert.GreaterOrEqual(t, api.polls.Load(), int32(3))
	assert.Empty(t, score.Warnings)
}

func TestSubmit_AIPercentInData(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{aiBody: `{"data":{"percent": 12.5}}`})

	score, err := b.Submit(context.Background(), "Another essay.")
	require.NoError(t, err)
	assert.Equal(t, 12.5, score.AIPercent)
	assert.True(t, score.Measured.Has(domain.MeasureAI))
}

func TestSubmit_AIFailureLeavesDimensionUnmeasured(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{aiStatus: http.StatusInternalServerError, aiBody: "down"})

	score, err := b.Submit(context.Background(), "Essay text.")
	require.NoError(t, err)
	assert.Equal(t, domain.MeasurePlagiarism, score.Measured)
	assert.Zero(t, score.AIPercent)
	assert.Len(t, score.Warnings, 1)
}

func TestSubmit_CapsInput(t *testing.T) {
	api := &fakeAPI{aiBody: `{"ai_score": 1}`}
	b := newTestBackend(t, api)

	_, err := b.Submit(context.Background(), strings.Repeat("é", MaxChars+100))
	require.NoError(t, err)
	assert.Equal(t, MaxChars, utf8.RuneCountInString(api.submitted.Load().(string)))
}

func TestSubmit_ReportNeverReady(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{notReady: 1 << 30, aiBody: `{}`})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := b.Submit(ctx, "Essay text.")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmit_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":false,"message":"quota exceeded"}`))
	}))
	defer server.Close()

	b, err := New(Config{Token: "pc-token", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = b.Submit(context.Background(), "Essay text.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSubmit_Unauthorised(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad token"}`))
	}))
	defer server.Close()

	b, err := New(Config{Token: "pc-token", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = b.Submit(context.Background(), "Essay text.")
	assert.True(t, remote.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "plagiarismcheck error (status 401)")
}

func TestCapChars(t *testing.T) {
	assert.Equal(t, "abc", capChars("abc", 5))
	assert.Equal(t, "ab", capChars("abc", 2))
}
