package controller

type PlayerEventType string

const (
	EventSubscribed   PlayerEventType = "subscribed"
	EventTrackChanged PlayerEventType = "track_changed"
	EventPlayed       PlayerEventType = "played"
	EventPaused       PlayerEventType = "paused"
)

func (e PlayerEventType) String() string {
	return string(e)
}
