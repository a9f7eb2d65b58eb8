package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatbridge/catalog"
	"beatbridge/config"
	"beatbridge/handlers"
	"beatbridge/metrics"
	"beatbridge/resolver"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.ConfigStruct{
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		History:   config.HistoryConfig{Limit: 20},
	}
	res := resolver.New(catalog.Default(), resolver.Placeholder{
		AudioURL:        config.DefaultPlaceholderAudioURL,
		DurationSeconds: 180,
	})
	srv := httptest.NewServer(handlers.NewManager(cfg, res, metrics.New(), nil).Router())
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestHealth(t *testing.T) {
	h, err := newTestServer(t).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestSearchAndExtract(t *testing.T) {
	c := newTestServer(t)

	d, err := c.SearchAndExtract(context.Background(), resolver.ByQuery("LOFI"))
	require.NoError(t, err)
	assert.Equal(t, "jfKfPfyJRdk", d.ID())
	assert.Equal(t, 12345, d.DurationSeconds())
	assert.Equal(t, "https://www.youtube.com/watch?v=jfKfPfyJRdk", d.SourceURL())
	assert.WithinDuration(t, time.Now(), d.ResolvedAt(), time.Minute)

	d, err = c.SearchAndExtract(context.Background(), resolver.ByURL("https://x.com/watch?v=ABC123&t=5"))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", d.ID())
	assert.Equal(t, "Video ABC123", d.Title())
}

func TestSearchAndExtractRejectsEmptyRequestLocally(t *testing.T) {
	_, err := newTestServer(t).SearchAndExtract(context.Background(), resolver.LookupRequest{})
	assert.True(t, resolver.IsInvalidInput(err))
}

func TestExtractAudio(t *testing.T) {
	d, err := newTestServer(t).ExtractAudio(context.Background(), "ABC123", "")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", d.ID())
	assert.Equal(t, 180, d.DurationSeconds())
	assert.Empty(t, d.SourceURL())
}

func TestAPIError(t *testing.T) {
	_, err := newTestServer(t).ExtractAudio(context.Background(), "", "https://x.com/nothing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, handlers.InvalidURLMessage, apiErr.Message)
}

func TestInternalErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error","message":"boom"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Health(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal server error: boom", apiErr.Message)
}
