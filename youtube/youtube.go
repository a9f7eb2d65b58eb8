package youtube

import (
	"errors"
	"net/url"
	"strings"
)

const videoIDMarker = "v="

var (
	ErrMalformedURL = errors.New("malformed url")
	ErrNoVideoID    = errors.New("url has no video id")
)

// ExtractVideoID returns the substring after the first "v=" marker up to the
// next '&' or the end of the string. The host is not checked, any URL that
// carries the marker is accepted.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrMalformedURL
	}
	if _, err := url.Parse(rawURL); err != nil {
		return "", ErrMalformedURL
	}

	idx := strings.Index(rawURL, videoIDMarker)
	if idx == -1 {
		return "", ErrNoVideoID
	}

	videoID := rawURL[idx+len(videoIDMarker):]
	if end := strings.IndexByte(videoID, '&'); end != -1 {
		videoID = videoID[:end]
	}
	if videoID == "" {
		return "", ErrNoVideoID
	}
	return videoID, nil
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + url.PathEscape(videoID) + "/hqdefault.jpg"
}
