package sentry

import (
	"context"
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"beatbridge/config"
)

type contextKey string

const hubContextKey contextKey = "sentry_hub"

// Init configures the global client. An empty DSN leaves the SDK in no-op
// mode, so spans and captures stay safe to call.
func Init(cfg config.SentryConfig) error {
	if !cfg.IsEnabled() {
		log.WithField("module", "sentry").Debug("SENTRY_DSN not set, error reporting disabled")
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    cfg.IsEnabled(),
		TracesSampleRate: 1.0,
	})
}

// Flush waits for buffered events before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// GinMiddleware attaches a per-request hub. Panics are re-raised so the
// recovery middleware can still write the 500 body.
func GinMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// HubFromGin returns the request hub set by GinMiddleware, or the current hub.
func HubFromGin(c *gin.Context) *sentry.Hub {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// StartCommandTransaction clones the hub so breadcrumbs and tags stay
// scoped to one CLI command.
func StartCommandTransaction(ctx context.Context, command string) (context.Context, *sentry.Span) {
	hub := sentry.CurrentHub().Clone()
	ctx = context.WithValue(ctx, hubContextKey, hub)
	ctx = sentry.SetHubOnContext(ctx, hub)

	transaction := sentry.StartTransaction(ctx, "cli."+command,
		sentry.WithOpName("cli.command"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	transaction.SetTag("command", command)
	hub.Scope().SetSpan(transaction)

	return transaction.Context(), transaction
}

func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub, ok := ctx.Value(hubContextKey).(*sentry.Hub); ok && hub != nil {
		return hub
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

func ReportError(ctx context.Context, err error) {
	HubFromContext(ctx).CaptureException(err)
}

func AddBreadcrumb(ctx context.Context, category, message string) {
	HubFromContext(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
	}, nil)
}
