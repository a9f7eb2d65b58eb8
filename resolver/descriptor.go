package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// TrackDescriptor is a resolved playable unit. Fields are unexported so a
// descriptor cannot change after it is returned.
type TrackDescriptor struct {
	id              string
	title           string
	durationSeconds int
	audioURL        string
	sourceURL       string
	resolvedAt      time.Time
}

// NewTrackDescriptor validates its inputs. sourceURL may be empty.
func NewTrackDescriptor(id, title string, durationSeconds int, audioURL, sourceURL string, resolvedAt time.Time) (TrackDescriptor, error) {
	if id == "" {
		return TrackDescriptor{}, errors.New("descriptor id is empty")
	}
	if durationSeconds <= 0 {
		return TrackDescriptor{}, fmt.Errorf("descriptor duration must be positive, got %d", durationSeconds)
	}
	if err := validateAbsoluteURL(audioURL); err != nil {
		return TrackDescriptor{}, fmt.Errorf("descriptor audio url: %w", err)
	}
	if sourceURL != "" {
		if err := validateAbsoluteURL(sourceURL); err != nil {
			return TrackDescriptor{}, fmt.Errorf("descriptor source url: %w", err)
		}
	}
	if resolvedAt.IsZero() {
		return TrackDescriptor{}, errors.New("descriptor resolvedAt is zero")
	}

	return TrackDescriptor{
		id:              id,
		title:           title,
		durationSeconds: durationSeconds,
		audioURL:        audioURL,
		sourceURL:       sourceURL,
		resolvedAt:      resolvedAt,
	}, nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute url", raw)
	}
	return nil
}

func (d TrackDescriptor) ID() string              { return d.id }
func (d TrackDescriptor) Title() string           { return d.title }
func (d TrackDescriptor) DurationSeconds() int    { return d.durationSeconds }
func (d TrackDescriptor) Duration() time.Duration { return time.Duration(d.durationSeconds) * time.Second }
func (d TrackDescriptor) AudioURL() string        { return d.audioURL }
func (d TrackDescriptor) SourceURL() string       { return d.sourceURL }
func (d TrackDescriptor) ResolvedAt() time.Time   { return d.resolvedAt }

// IsZero reports whether d was never constructed.
func (d TrackDescriptor) IsZero() bool {
	return d.id == ""
}

type descriptorJSON struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"durationSeconds"`
	AudioURL        string    `json:"audioUrl"`
	SourceURL       string    `json:"sourceUrl,omitempty"`
	ResolvedAt      time.Time `json:"resolvedAt"`
}

func (d TrackDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptorJSON{
		ID:              d.id,
		Title:           d.title,
		DurationSeconds: d.durationSeconds,
		AudioURL:        d.audioURL,
		SourceURL:       d.sourceURL,
		ResolvedAt:      d.resolvedAt,
	})
}
