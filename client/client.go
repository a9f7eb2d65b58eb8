// Package client talks to a running resolver service and turns its JSON
// responses back into immutable track descriptors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"beatbridge/handlers"
	"beatbridge/resolver"
)

// APIError is any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("resolver returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Entry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.WithFields(log.Fields{"module": "client"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (handlers.HealthResponse, error) {
	var out handlers.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// ExtractAudio resolves by video id when set, otherwise by url.
func (c *Client) ExtractAudio(ctx context.Context, videoID, url string) (resolver.TrackDescriptor, error) {
	var out handlers.ExtractAudioResponse
	body := handlers.ExtractAudioRequest{VideoID: videoID, URL: url}
	if err := c.do(ctx, http.MethodPost, "/api/extract-audio", body, &out); err != nil {
		return resolver.TrackDescriptor{}, err
	}
	return toDescriptor(out.VideoID, out.Title, out.Duration, out.AudioURL, "", out.ExtractedAt)
}

// SearchAndExtract sends a single-field request built from req.
func (c *Client) SearchAndExtract(ctx context.Context, req resolver.LookupRequest) (resolver.TrackDescriptor, error) {
	if _, err := req.Kind(); err != nil {
		return resolver.TrackDescriptor{}, err
	}

	var out handlers.SearchAndExtractResponse
	body := handlers.SearchAndExtractRequest{Query: req.Query, VideoID: req.ID, URL: req.URL}
	if err := c.do(ctx, http.MethodPost, "/api/search-and-extract", body, &out); err != nil {
		return resolver.TrackDescriptor{}, err
	}
	return toDescriptor(out.VideoID, out.Title, out.Duration, out.AudioURL, out.URL, out.ExtractedAt)
}

func toDescriptor(id, title string, duration int, audioURL, sourceURL, extractedAt string) (resolver.TrackDescriptor, error) {
	resolvedAt, err := time.Parse(time.RFC3339, extractedAt)
	if err != nil {
		return resolver.TrackDescriptor{}, fmt.Errorf("bad extractedAt %q: %w", extractedAt, err)
	}
	return resolver.NewTrackDescriptor(id, title, duration, audioURL, sourceURL, resolvedAt)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": resp.Header.Get(handlers.RequestIDHeader),
	}).Debug("resolver response")

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
			if e.Message != "" {
				msg += ": " + e.Message
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
