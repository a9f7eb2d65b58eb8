package controller

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"beatbridge/resolver"
)

const (
	NoTrackTitle = "No track"
	NoTrackGlyph = "♪"
)

// Controls is the transport contract presentation layers bind to.
type Controls interface {
	State() State
	TogglePlayPause()
	NextTrack() bool
	PreviousTrack() bool
	SetCurrentTrack(track resolver.TrackDescriptor)
}

// State is a snapshot. Observers only ever receive whole snapshots, so the
// track and the playing flag always belong to the same update.
type State struct {
	CurrentTrack *resolver.TrackDescriptor
	IsPlaying    bool
	Event        PlayerEventType
	Version      uint64
}

func (s State) HasTrack() bool {
	return s.CurrentTrack != nil
}

// DisplayTitle is what a view renders for the current track.
func (s State) DisplayTitle() string {
	if s.CurrentTrack == nil {
		return NoTrackTitle
	}
	return s.CurrentTrack.Title()
}

// Glyph is shown in place of artwork when nothing is loaded.
func (s State) Glyph() string {
	if s.CurrentTrack == nil {
		return NoTrackGlyph
	}
	return ""
}

// Player holds the current track and the playing flag. Every mutation takes
// the mutex, bumps Version and publishes the new snapshot before unlocking.
type Player struct {
	source      TrackSource
	current     *resolver.TrackDescriptor
	playing     bool
	version     uint64
	subscribers map[int]chan State
	nextSubID   int
	mutex       sync.Mutex
	logger      *log.Entry
}

var _ Controls = (*Player)(nil)

// NewPlayer returns a stopped player with no track. source may be nil, in
// which case NextTrack and PreviousTrack are always no-ops.
func NewPlayer(source TrackSource) *Player {
	return &Player{
		source:      source,
		subscribers: make(map[int]chan State),
		logger:      log.WithFields(log.Fields{"module": "player"}),
	}
}

func (p *Player) State() State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.snapshot("")
}

func (p *Player) CurrentTrack() *resolver.TrackDescriptor {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.current
}

func (p *Player) IsPlaying() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.playing
}

// TogglePlayPause flips the playing flag and leaves the track alone.
func (p *Player) TogglePlayPause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.playing = !p.playing
	event := EventPaused
	if p.playing {
		event = EventPlayed
	}
	p.logger.Tracef("toggled, playing=%v", p.playing)
	p.commit(event)
}

// NextTrack advances the track source. At the end it changes nothing and
// returns false.
func (p *Player) NextTrack() bool {
	return p.navigate(func() (resolver.TrackDescriptor, bool) { return p.source.Next() })
}

// PreviousTrack steps back in the track source. At the start it changes
// nothing and returns false.
func (p *Player) PreviousTrack() bool {
	return p.navigate(func() (resolver.TrackDescriptor, bool) { return p.source.Previous() })
}

func (p *Player) navigate(step func() (resolver.TrackDescriptor, bool)) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.source == nil {
		return false
	}
	track, ok := step()
	if !ok {
		p.logger.Trace("no track in that direction")
		return false
	}
	p.current = &track
	p.commit(EventTrackChanged)
	return true
}

// SetCurrentTrack replaces the current track. This is where resolver output
// enters the player.
func (p *Player) SetCurrentTrack(track resolver.TrackDescriptor) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current = &track
	p.logger.Debugf("current track set to %s", track.ID())
	p.commit(EventTrackChanged)
}

// Subscribe returns a channel that always holds the latest state. A slow
// reader skips intermediate snapshots rather than blocking the player.
// The channel is closed by the returned cancel func.
func (p *Player) Subscribe() (<-chan State, func()) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ch := make(chan State, 1)
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = ch
	ch <- p.snapshot(EventSubscribed)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mutex.Lock()
			defer p.mutex.Unlock()
			delete(p.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (p *Player) snapshot(event PlayerEventType) State {
	return State{
		CurrentTrack: p.current,
		IsPlaying:    p.playing,
		Event:        event,
		Version:      p.version,
	}
}

// commit must be called with the mutex held.
func (p *Player) commit(event PlayerEventType) {
	p.version++
	state := p.snapshot(event)
	for _, ch := range p.subscribers {
		select {
		case ch <- state:
		default:
			// drop the stale snapshot and replace it with the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
