package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrEmptyMood is returned when a session is requested without a mood.
	ErrEmptyMood = errors.New("mood is required")
	// ErrNoPlayableTracks means no suggestion could be matched to a video.
	ErrNoPlayableTracks = errors.New("no playable tracks")
	// ErrSessionNotFound is returned for unknown or evicted sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy is returned when a build or extension is already running.
	ErrSessionBusy = errors.New("session is busy")
	// ErrSessionNotReady is returned when a session has no queue to extend yet.
	ErrSessionNotReady = errors.New("session is not ready")
	// ErrIndexOutOfRange is returned by Seek for positions outside the queue.
	ErrIndexOutOfRange = errors.New("queue index out of range")
)

// SongSuggestion is an unresolved title/artist pair produced by a recommender.
type SongSuggestion struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Query returns the "artist title" form used for searches and exclusion lists.
func (s SongSuggestion) Query() string {
	return strings.TrimSpace(s.Artist + " " + s.Title)
}

// Recommendation is the outcome of a recommendation call. Songs is never empty;
// Fallback reports that the static list was used and Reason says why.
type Recommendation struct {
	Songs    []SongSuggestion
	Fallback bool
	Reason   string
}

// VideoResult is the top hit of a video search.
type VideoResult struct {
	VideoID   string
	Title     string
	Thumbnail string
	Channel   string
	Duration  time.Duration
	Views     int64
}

// ResolvedTrack is a suggestion that was matched to a playable video.
type ResolvedTrack struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	VideoID    string        `json:"videoId"`
	Thumbnail  string        `json:"thumbnail"`
	VideoTitle string        `json:"videoTitle,omitempty"`
	Channel    string        `json:"channel,omitempty"`
	Duration   time.Duration `json:"-"`
}

// Suggestion returns the title/artist pair the track was resolved from.
func (t ResolvedTrack) Suggestion() SongSuggestion {
	return SongSuggestion{Title: t.Title, Artist: t.Artist}
}

// SessionStatus is the coarse lifecycle of a session.
type SessionStatus string

const (
	StatusEmpty   SessionStatus = "empty"
	StatusLoading SessionStatus = "loading"
	StatusReady   SessionStatus = "ready"
	StatusFailed  SessionStatus = "failed"
)

// Recommender suggests songs for a mood. Implementations must degrade to a
// fallback list instead of failing.
type Recommender interface {
	Recommend(ctx context.Context, mood string, count int, exclude []string) Recommendation
}

// VideoSearcher resolves a free-text query to the top video hit. A nil result
// without an error means the query had no hit.
type VideoSearcher interface {
	Search(ctx context.Context, query string) (*VideoResult, error)
}

// MoodStore remembers recently used moods.
type MoodStore interface {
	Record(ctx context.Context, mood string) error
	List(ctx context.Context) ([]RecentMood, error)
}

// RecentMood is one entry of the recent-moods list.
type RecentMood struct {
	Mood   string    `json:"mood"`
	UsedAt time.Time `json:"usedAt"`
}

// ExclusionSet tracks songs already offered to a session.
type ExclusionSet interface {
	Has(key string) bool
	Add(key string)
	Size() int
}

// Metrics receives observability signals from the core. All methods must be
// safe for concurrent use.
type Metrics interface {
	RecordResolve(status string)
	ObserveQueueBuild(duration time.Duration, resolved int)
	SetActiveSessions(count int)
}

type nopMetrics struct{}

func (nopMetrics) RecordResolve(string)                 {}
func (nopMetrics) ObserveQueueBuild(time.Duration, int) {}
func (nopMetrics) SetActiveSessions(int)                {}

// NopMetrics discards every signal.
var NopMetrics Metrics = nopMetrics{}
