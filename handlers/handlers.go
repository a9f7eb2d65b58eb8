package handlers

// handlers turn HTTP lookups into resolver requests and shape the JSON
// responses the player client expects.

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"beatbridge/config"
	"beatbridge/database"
	"beatbridge/metrics"
	"beatbridge/pages"
	"beatbridge/resolver"
	"beatbridge/sentry"
)

const (
	MissingExtractParams = "Missing videoId or url parameter"
	MissingSearchParams  = "Missing query, videoId, or url parameter"
	InvalidURLMessage    = "Could not extract a video id from url"
	InvalidBodyMessage   = "Request body must be a JSON object"

	maxHistoryLimit = 100
)

// HistoryStore is the write-mostly audit log. *database.Database satisfies it.
type HistoryStore interface {
	RecordLookup(ctx context.Context, r database.LookupRecord) (string, error)
	RecentLookups(ctx context.Context, limit int) ([]database.LookupRecord, error)
}

type ExtractAudioRequest struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
}

type SearchAndExtractRequest struct {
	Query   string `json:"query"`
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
}

type ExtractAudioResponse struct {
	Success     bool   `json:"success"`
	AudioURL    string `json:"audioUrl"`
	Title       string `json:"title"`
	Duration    int    `json:"duration"`
	VideoID     string `json:"videoId"`
	ExtractedAt string `json:"extractedAt"`
}

type SearchAndExtractResponse struct {
	Success     bool   `json:"success"`
	AudioURL    string `json:"audioUrl"`
	Title       string `json:"title"`
	VideoID     string `json:"videoId"`
	Duration    int    `json:"duration"`
	URL         string `json:"url"`
	ExtractedAt string `json:"extractedAt"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Manager struct {
	Resolver     *resolver.Resolver
	Metrics      *metrics.Metrics
	History      HistoryStore
	HistoryLimit int
	limiter      *rate.Limiter
	logger       *log.Entry
}

// NewManager wires the handlers. history may be nil when HISTORY_DB_PATH is unset.
func NewManager(cfg *config.ConfigStruct, res *resolver.Resolver, m *metrics.Metrics, history HistoryStore) *Manager {
	if m == nil {
		m = metrics.New()
	}
	return &Manager{
		Resolver:     res,
		Metrics:      m,
		History:      history,
		HistoryLimit: cfg.History.Limit,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
		logger:       log.WithFields(log.Fields{"module": "handlers"}),
	}
}

// Router builds the gin engine with every route and middleware attached.
func (manager *Manager) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(),
		manager.accessLog(),
		manager.recovery(),
		sentry.GinMiddleware(),
	)

	router.GET("/", manager.handleIndex)
	router.GET("/health", manager.handleHealth)
	router.GET("/metrics", gin.WrapH(manager.Metrics.Handler()))

	api := router.Group("/api", manager.rateLimit())
	api.POST("/extract-audio", manager.handleExtractAudio)
	api.POST("/search-and-extract", manager.handleSearchAndExtract)
	api.GET("/history", manager.handleHistory)

	return router
}

func (manager *Manager) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pages.Index(pages.Endpoints)))
}

func (manager *Manager) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "Audio resolver is running",
	})
}

func (manager *Manager) handleExtractAudio(c *gin.Context) {
	var body ExtractAudioRequest
	if !bindBody(c, &body) {
		return
	}

	var req resolver.LookupRequest
	switch {
	case strings.TrimSpace(body.VideoID) != "":
		req = resolver.ByID(body.VideoID)
	case strings.TrimSpace(body.URL) != "":
		req = resolver.ByURL(body.URL)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingExtractParams})
		return
	}

	res, ok := manager.lookup(c, req)
	if !ok {
		return
	}

	d := res.Descriptor
	c.JSON(http.StatusOK, ExtractAudioResponse{
		Success:     true,
		AudioURL:    d.AudioURL(),
		Title:       d.Title(),
		Duration:    d.DurationSeconds(),
		VideoID:     d.ID(),
		ExtractedAt: d.ResolvedAt().Format(time.RFC3339),
	})
}

func (manager *Manager) handleSearchAndExtract(c *gin.Context) {
	var body SearchAndExtractRequest
	if !bindBody(c, &body) {
		return
	}

	// videoId outranks url, url outranks query
	var req resolver.LookupRequest
	switch {
	case strings.TrimSpace(body.VideoID) != "":
		req = resolver.ByID(body.VideoID)
	case strings.TrimSpace(body.URL) != "":
		req = resolver.ByURL(body.URL)
	case strings.TrimSpace(body.Query) != "":
		req = resolver.ByQuery(body.Query)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingSearchParams})
		return
	}

	res, ok := manager.lookup(c, req)
	if !ok {
		return
	}

	d := res.Descriptor
	c.JSON(http.StatusOK, SearchAndExtractResponse{
		Success:     true,
		AudioURL:    d.AudioURL(),
		Title:       d.Title(),
		VideoID:     d.ID(),
		Duration:    d.DurationSeconds(),
		URL:         d.SourceURL(),
		ExtractedAt: d.ResolvedAt().Format(time.RFC3339),
	})
}

func (manager *Manager) handleHistory(c *gin.Context) {
	if manager.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lookup history is disabled"})
		return
	}

	limit := manager.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := manager.History.RecentLookups(c.Request.Context(), limit)
	if err != nil {
		manager.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lookups": records})
}

// lookup resolves req and writes the error response itself when it fails.
func (manager *Manager) lookup(c *gin.Context, req resolver.LookupRequest) (resolver.Resolution, bool) {
	kind, _ := req.Kind()
	start := time.Now()

	res, err := manager.Resolver.Lookup(c.Request.Context(), req)
	if err != nil {
		if resolver.IsInvalidInput(err) {
			manager.Metrics.RecordLookup(kind.String(), "invalid", false, time.Since(start))
			message := err.Error()
			if kind == resolver.KindURL {
				message = InvalidURLMessage
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": message})
			return resolver.Resolution{}, false
		}
		manager.Metrics.RecordLookup(kind.String(), "error", false, time.Since(start))
		manager.internalError(c, err)
		return resolver.Resolution{}, false
	}
	manager.Metrics.RecordLookup(kind.String(), "ok", res.Fallback, time.Since(start))

	if manager.History != nil {
		_, err := manager.History.RecordLookup(c.Request.Context(), database.LookupRecord{
			Kind:       res.Kind.String(),
			Input:      res.Input,
			VideoID:    res.Descriptor.ID(),
			Title:      res.Descriptor.Title(),
			Fallback:   res.Fallback,
			ResolvedAt: res.Descriptor.ResolvedAt(),
		})
		if err != nil {
			// history is an audit log, a failed write never fails the lookup
			manager.logger.WithField("request_id", c.GetString(requestIDKey)).Warnf("failed to record lookup: %v", err)
		}
	}
	return res, true
}

func (manager *Manager) internalError(c *gin.Context, err error) {
	manager.logger.WithField("request_id", c.GetString(requestIDKey)).Errorf("request failed: %v", err)
	sentry.HubFromGin(c).CaptureException(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": err.Error(),
	})
}

// bindBody decodes a JSON object. An empty body is treated as {}.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": InvalidBodyMessage})
		return false
	}
	return true
}
