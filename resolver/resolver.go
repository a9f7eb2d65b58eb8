// Package resolver maps a lookup request to a playable track descriptor.
//
// Resolution is local: ids and URLs become descriptors pointing at a
// placeholder audio URL, and queries are matched against a fixed catalog.
// A query that matches nothing resolves to the catalog default instead of
// failing, so every non-empty query yields a playable result.
package resolver

import (
	"context"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"beatbridge/catalog"
	"beatbridge/youtube"
)

// Placeholder is what id and URL lookups resolve to until a real
// extraction backend replaces this resolver.
type Placeholder struct {
	AudioURL        string
	DurationSeconds int
}

// Resolution is a descriptor plus how it was produced.
type Resolution struct {
	Descriptor TrackDescriptor
	Kind       LookupKind
	Input      string
	// Fallback is true when a query missed the catalog and the default was used.
	Fallback bool
}

type Resolver struct {
	catalog     *catalog.Catalog
	placeholder Placeholder
	now         func() time.Time
	logger      *log.Entry
}

type Option func(*Resolver)

// WithClock overrides time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

func New(c *catalog.Catalog, placeholder Placeholder, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:     c,
		placeholder: placeholder,
		now:         time.Now,
		logger:      log.WithFields(log.Fields{"module": "resolver"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveByID builds a descriptor with a generic title. It only fails when
// the id is blank.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (TrackDescriptor, error) {
	span := sentry.StartSpan(ctx, "resolver.resolve_by_id")
	span.SetTag("video_id", id)
	defer span.Finish()

	if strings.TrimSpace(id) == "" {
		span.Status = sentry.SpanStatusInvalidArgument
		return TrackDescriptor{}, invalidInput("video id is empty", nil)
	}

	r.logger.Tracef("resolving id %s", id)
	d, err := NewTrackDescriptor(
		id,
		"Video "+id,
		r.placeholder.DurationSeconds,
		r.placeholder.AudioURL,
		youtube.WatchURL(id),
		r.now().UTC(),
	)
	if err != nil {
		// only reachable with a bad placeholder configuration
		span.Status = sentry.SpanStatusInternalError
		return TrackDescriptor{}, err
	}
	span.Status = sentry.SpanStatusOK
	return d, nil
}

// ResolveByURL pulls the id out of the URL's v= parameter and delegates to
// ResolveByID.
func (r *Resolver) ResolveByURL(ctx context.Context, rawURL string) (TrackDescriptor, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		r.logger.WithField("url", rawURL).Debugf("no extractable id: %v", err)
		return TrackDescriptor{}, invalidInput("url has no extractable video id", err)
	}
	return r.ResolveByID(ctx, videoID)
}

// ResolveByQuery matches text against the catalog case-insensitively.
// A miss resolves to the default entry.
func (r *Resolver) ResolveByQuery(ctx context.Context, text string) (TrackDescriptor, error) {
	d, _, err := r.resolveQuery(ctx, text)
	return d, err
}

func (r *Resolver) resolveQuery(ctx context.Context, text string) (TrackDescriptor, bool, error) {
	span := sentry.StartSpan(ctx, "resolver.resolve_by_query")
	span.SetTag("query", text)
	defer span.Finish()

	if strings.TrimSpace(text) == "" {
		span.Status = sentry.SpanStatusInvalidArgument
		return TrackDescriptor{}, false, invalidInput("query is empty", nil)
	}

	entry, matched := r.catalog.Lookup(text)
	if !matched {
		r.logger.WithField("query", text).Debugf("no catalog match, using default %q", catalog.DefaultKey)
	}
	span.SetData("fallback", !matched)

	d, err := NewTrackDescriptor(
		entry.VideoID,
		entry.Title,
		entry.Duration,
		r.placeholder.AudioURL,
		youtube.WatchURL(entry.VideoID),
		r.now().UTC(),
	)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return TrackDescriptor{}, false, err
	}
	span.Status = sentry.SpanStatusOK
	return d, !matched, nil
}

// Resolve dispatches on the request's single populated field.
func (r *Resolver) Resolve(ctx context.Context, req LookupRequest) (TrackDescriptor, error) {
	res, err := r.Lookup(ctx, req)
	if err != nil {
		return TrackDescriptor{}, err
	}
	return res.Descriptor, nil
}

// Lookup is Resolve with the bookkeeping callers need for metrics and history.
func (r *Resolver) Lookup(ctx context.Context, req LookupRequest) (Resolution, error) {
	kind, err := req.Kind()
	if err != nil {
		return Resolution{}, err
	}

	value := req.Value()
	res := Resolution{Kind: kind, Input: value}

	switch kind {
	case KindID:
		res.Descriptor, err = r.ResolveByID(ctx, value)
	case KindURL:
		res.Descriptor, err = r.ResolveByURL(ctx, value)
	case KindQuery:
		res.Descriptor, res.Fallback, err = r.resolveQuery(ctx, value)
	}
	if err != nil {
		return Resolution{}, err
	}

	r.logger.WithFields(log.Fields{
		"kind":     kind,
		"video_id": res.Descriptor.ID(),
		"fallback": res.Fallback,
	}).Debug("resolved lookup")
	return res, nil
}
