package resolver

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatbridge/catalog"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

const placeholderURL = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"

func newTestResolver() *Resolver {
	return New(
		catalog.Default(),
		Placeholder{AudioURL: placeholderURL, DurationSeconds: 180},
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestResolveByID(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	for _, id := range []string{"ABC123", "jfKfPfyJRdk", "a", "with space", "ünïcode"} {
		d, err := r.ResolveByID(ctx, id)
		require.NoError(t, err, id)

		assert.Equal(t, id, d.ID())
		assert.Equal(t, "Video "+id, d.Title())
		assert.Equal(t, 180, d.DurationSeconds())
		assert.Equal(t, fixedNow, d.ResolvedAt())

		u, err := url.Parse(d.AudioURL())
		require.NoError(t, err)
		assert.True(t, u.IsAbs())
	}
}

func TestResolveByIDEmpty(t *testing.T) {
	_, err := newTestResolver().ResolveByID(context.Background(), "  ")
	assert.True(t, IsInvalidInput(err))
}

func TestResolveByURL(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	tests := []struct {
		url  string
		want string
	}{
		{"https://x.com/watch?v=ABC123&t=5", "ABC123"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL1&v=XYZ", "XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := r.ResolveByURL(ctx, tt.url)
			require.NoError(t, err)

			want, err := r.ResolveByID(ctx, tt.want)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestResolveByURLInvalid(t *testing.T) {
	r := newTestResolver()

	for _, raw := range []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=",
		"not a url at all",
		"",
	} {
		_, err := r.ResolveByURL(context.Background(), raw)
		assert.True(t, IsInvalidInput(err), "url %q: err = %v", raw, err)
	}
}

func TestResolveByQueryCaseInsensitive(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	want, err := r.ResolveByQuery(ctx, "drake")
	require.NoError(t, err)
	assert.Equal(t, "uxpDa-c-4Mc", want.ID())

	for _, q := range []string{"Drake", "DRAKE", "dRaKe"} {
		got, err := r.ResolveByQuery(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}

func TestResolveByQueryFallback(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	lofi, err := r.ResolveByQuery(ctx, "lofi")
	require.NoError(t, err)
	assert.Equal(t, "jfKfPfyJRdk", lofi.ID())
	assert.Equal(t, 12345, lofi.DurationSeconds())

	for _, q := range []string{"xyzzy", "something else entirely", "42"} {
		got, err := r.ResolveByQuery(ctx, q)
		require.NoError(t, err, q)
		assert.Equal(t, lofi, got, q)
	}
}

func TestResolveByQueryEmpty(t *testing.T) {
	_, err := newTestResolver().ResolveByQuery(context.Background(), "")
	assert.True(t, IsInvalidInput(err))
}

func TestResolveDispatch(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	d, err := r.Resolve(ctx, ByID("ABC"))
	require.NoError(t, err)
	assert.Equal(t, "ABC", d.ID())

	d, err = r.Resolve(ctx, ByURL("https://x.com/watch?v=DEF&t=1"))
	require.NoError(t, err)
	assert.Equal(t, "DEF", d.ID())

	d, err = r.Resolve(ctx, ByQuery("The Weeknd"))
	require.NoError(t, err)
	assert.Equal(t, "4NRXx6U8ABQ", d.ID())
}

func TestResolveRejectsBadDiscriminants(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name string
		req  LookupRequest
	}{
		{"none", LookupRequest{}},
		{"blank", LookupRequest{Query: " ", ID: "\t"}},
		{"query and id", LookupRequest{Query: "lofi", ID: "abc"}},
		{"id and url", LookupRequest{ID: "abc", URL: "https://x.com/watch?v=abc"}},
		{"all three", LookupRequest{Query: "lofi", ID: "abc", URL: "https://x.com/watch?v=abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err))
		})
	}
}

func TestLookupReportsFallback(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	res, err := r.Lookup(ctx, ByQuery("xyzzy"))
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, KindQuery, res.Kind)
	assert.Equal(t, "xyzzy", res.Input)

	res, err = r.Lookup(ctx, ByQuery("drake"))
	require.NoError(t, err)
	assert.False(t, res.Fallback)

	res, err = r.Lookup(ctx, ByID("abc"))
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, KindID, res.Kind)
}

func TestBadPlaceholderIsNotInvalidInput(t *testing.T) {
	r := New(catalog.Default(), Placeholder{AudioURL: "relative/path.mp3", DurationSeconds: 180})

	_, err := r.ResolveByID(context.Background(), "abc")
	require.Error(t, err)
	assert.False(t, IsInvalidInput(err))
}

func TestNewTrackDescriptorValidation(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		duration int
		audio    string
		source   string
		at       time.Time
		wantErr  bool
	}{
		{"valid", "a", 1, placeholderURL, "", fixedNow, false},
		{"valid with source", "a", 1, placeholderURL, "https://www.youtube.com/watch?v=a", fixedNow, false},
		{"empty id", "", 1, placeholderURL, "", fixedNow, true},
		{"zero duration", "a", 0, placeholderURL, "", fixedNow, true},
		{"relative audio", "a", 1, "/a.mp3", "", fixedNow, true},
		{"no host", "a", 1, "file:a.mp3", "", fixedNow, true},
		{"bad source", "a", 1, placeholderURL, "nope", fixedNow, true},
		{"zero time", "a", 1, placeholderURL, "", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrackDescriptor(tt.id, "t", tt.duration, tt.audio, tt.source, tt.at)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescriptorJSON(t *testing.T) {
	d, err := newTestResolver().ResolveByID(context.Background(), "ABC")
	require.NoError(t, err)

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "ABC", got["id"])
	assert.Equal(t, "Video ABC", got["title"])
	assert.Equal(t, float64(180), got["durationSeconds"])
	assert.Equal(t, "https://www.youtube.com/watch?v=ABC", got["sourceUrl"])
	assert.Equal(t, "2026-03-14T15:09:26Z", got["resolvedAt"])
}
