package core

import (
	"time"
)

// Playback is the queue plus the playback position. It is not safe for
// concurrent use; Session serializes access to it.
type Playback struct {
	queue    []ResolvedTrack
	position int
	debounce time.Duration
	now      func() time.Time

	// last auto-advance, used to swallow duplicate end-of-track signals
	lastEndedID string
	lastEndedAt time.Time
}

func NewPlayback(debounce time.Duration) *Playback {
	return &Playback{
		debounce: debounce,
		now:      time.Now,
	}
}

// Load replaces the queue and rewinds to the first track.
func (p *Playback) Load(tracks []ResolvedTrack) {
	p.queue = append([]ResolvedTrack(nil), tracks...)
	p.position = 0
	p.clearEndSignal()
}

// Reset drops the queue.
func (p *Playback) Reset() {
	p.queue = nil
	p.position = 0
	p.clearEndSignal()
}

// Append adds tracks to the end without moving the position.
func (p *Playback) Append(tracks []ResolvedTrack) {
	p.queue = append(p.queue, tracks...)
}

func (p *Playback) Len() int {
	return len(p.queue)
}

func (p *Playback) Empty() bool {
	return len(p.queue) == 0
}

// Position returns the current index, or -1 when the queue is empty.
func (p *Playback) Position() int {
	if p.Empty() {
		return -1
	}
	return p.position
}

// Current returns the track at the current position.
func (p *Playback) Current() (ResolvedTrack, bool) {
	if p.Empty() {
		return ResolvedTrack{}, false
	}
	return p.queue[p.position], true
}

// Tracks returns a copy of the queue.
func (p *Playback) Tracks() []ResolvedTrack {
	return append([]ResolvedTrack(nil), p.queue...)
}

// Next advances circularly; past the last track it wraps to the first.
func (p *Playback) Next() {
	if p.Empty() {
		return
	}
	p.clearEndSignal()
	p.advance()
}

// Previous steps back circularly; before the first track it wraps to the last.
func (p *Playback) Previous() {
	if p.Empty() {
		return
	}
	p.clearEndSignal()
	if p.position == 0 {
		p.position = len(p.queue) - 1
		return
	}
	p.position--
}

// Seek jumps to index.
func (p *Playback) Seek(index int) error {
	if index < 0 || index >= len(p.queue) {
		return ErrIndexOutOfRange
	}
	p.clearEndSignal()
	p.position = index
	return nil
}

// TrackEnded handles an end-of-track signal from the player surface and reports
// whether it advanced. Signals for a track other than the current one are
// stale and ignored. A repeat signal for the track that was just advanced from
// is ignored inside the debounce window; a single-track queue still loops once
// the window has passed. A signal without a track ID names the current track,
// but it is ignored inside the window of any previous advance since it cannot
// be told apart from a repeat.
func (p *Playback) TrackEnded(trackID string) bool {
	current, ok := p.Current()
	if !ok {
		return false
	}

	now := p.now()
	withinWindow := !p.lastEndedAt.IsZero() && now.Sub(p.lastEndedAt) < p.debounce
	if trackID == "" {
		if withinWindow {
			return false
		}
		trackID = current.ID
	}
	if trackID != current.ID {
		return false
	}
	if trackID == p.lastEndedID && withinWindow {
		return false
	}

	p.lastEndedID = trackID
	p.lastEndedAt = now
	p.advance()
	return true
}

func (p *Playback) advance() {
	p.position = (p.position + 1) % len(p.queue)
}

func (p *Playback) clearEndSignal() {
	p.lastEndedID = ""
	p.lastEndedAt = time.Time{}
}
