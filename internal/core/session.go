package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session is the state of one mood selection: the queue, the playback
// position and the build status. All methods are safe for concurrent use; the
// external calls of a build run without holding the lock.
type Session struct {
	id          string
	recommender Recommender
	builder     *QueueBuilder
	exclusions  ExclusionSet
	keyFunc     func(SongSuggestion) string
	count       int
	logger      *zap.Logger

	mutex      sync.Mutex
	mood       string
	status     SessionStatus
	playback   *Playback
	generation uint64
	busy       bool
	progress   Progress
	warning    string
	lastErr    error
	lastSeen   time.Time
}

// Progress is the running status of a build.
type Progress struct {
	Resolved int `json:"resolved"`
	Total    int `json:"total"`
}

// Snapshot is a consistent copy of a session for presentation.
type Snapshot struct {
	ID       string          `json:"id"`
	Mood     string          `json:"mood"`
	Status   SessionStatus   `json:"status"`
	Position int             `json:"position"`
	Current  *ResolvedTrack  `json:"current,omitempty"`
	Queue    []ResolvedTrack `json:"queue"`
	Progress Progress        `json:"progress"`
	Warning  string          `json:"warning,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// SessionOptions configures a session.
type SessionOptions struct {
	Count             int
	EndSignalDebounce time.Duration
	// KeyFunc maps a suggestion to its exclusion key. Defaults to a
	// lower-cased "artist title".
	KeyFunc func(SongSuggestion) string
}

func NewSession(id string, recommender Recommender, builder *QueueBuilder, exclusions ExclusionSet,
	opts SessionOptions, logger *zap.Logger) *Session {
	if opts.Count <= 0 {
		opts.Count = DefaultRecommendCount
	}
	if opts.KeyFunc == nil {
		opts.KeyFunc = func(s SongSuggestion) string { return strings.ToLower(s.Query()) }
	}
	if opts.EndSignalDebounce <= 0 {
		opts.EndSignalDebounce = DefaultEndSignalDebounceMillis * time.Millisecond
	}
	return &Session{
		id:          id,
		recommender: recommender,
		builder:     builder,
		exclusions:  exclusions,
		keyFunc:     opts.KeyFunc,
		count:       opts.Count,
		logger:      logger.With(zap.String("session", id)),
		status:      StatusEmpty,
		playback:    NewPlayback(opts.EndSignalDebounce),
		lastSeen:    time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start fetches recommendations for mood and builds a fresh queue. A Start
// that is overtaken by a newer Start discards its own results. Only
// ErrEmptyMood, ErrNoPlayableTracks and context errors are returned; every
// other fault is absorbed by the recommender and the builder.
func (s *Session) Start(ctx context.Context, mood string) error {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return ErrEmptyMood
	}

	s.mutex.Lock()
	s.generation++
	gen := s.generation
	s.mood = mood
	s.status = StatusLoading
	s.busy = true
	s.progress = Progress{}
	s.warning = ""
	s.lastErr = nil
	s.playback.Reset()
	s.touch()
	s.mutex.Unlock()

	s.logger.Info("Building queue", zap.String("mood", mood))

	rec := s.recommender.Recommend(ctx, mood, s.count, nil)
	tracks, err := s.builder.BuildQueue(ctx, rec.Songs, s.progressFunc(gen))

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale queue build", zap.Uint64("generation", gen))
		return nil
	}

	s.busy = false
	if rec.Fallback {
		s.warning = rec.Reason
	}
	if err != nil {
		s.status = StatusFailed
		s.lastErr = err
		s.logger.Warn("Queue build failed", zap.String("mood", mood), zap.Error(err))
		return err
	}

	s.playback.Load(tracks)
	for _, track := range tracks {
		s.exclusions.Add(s.keyFunc(track.Suggestion()))
	}
	s.status = StatusReady

	s.logger.Info("Queue ready",
		zap.String("mood", mood),
		zap.Int("tracks", len(tracks)),
		zap.Int("suggested", len(rec.Songs)),
		zap.Bool("fallback", rec.Fallback))

	return nil
}

// Extend asks for more songs, excluding everything already queued, and
// appends whatever resolves. The playback position is left alone. An extension
// that yields nothing new leaves the queue unchanged and is not an error.
func (s *Session) Extend(ctx context.Context) ([]ResolvedTrack, error) {
	s.mutex.Lock()
	if s.busy {
		s.mutex.Unlock()
		return nil, ErrSessionBusy
	}
	if s.status != StatusReady {
		s.mutex.Unlock()
		return nil, fmt.Errorf("cannot extend session in state %s: %w", s.status, ErrSessionNotReady)
	}
	gen := s.generation
	mood := s.mood
	queued := s.playback.Tracks()
	s.busy = true
	s.touch()
	s.mutex.Unlock()

	defer func() {
		s.mutex.Lock()
		if gen == s.generation {
			s.busy = false
		}
		s.mutex.Unlock()
	}()

	exclude := make([]string, 0, len(queued))
	for _, track := range queued {
		exclude = append(exclude, track.Suggestion().Query())
	}

	rec := s.recommender.Recommend(ctx, mood, s.count, exclude)

	s.mutex.Lock()
	fresh := s.filterKnown(rec.Songs)
	s.mutex.Unlock()

	if len(fresh) == 0 {
		s.logger.Info("Extension found nothing new",
			zap.Int("suggested", len(rec.Songs)),
			zap.Bool("fallback", rec.Fallback))
		return nil, nil
	}

	tracks, err := s.builder.BuildQueue(ctx, fresh, nil)
	if err != nil {
		if errors.Is(err, ErrNoPlayableTracks) {
			s.logger.Info("Extension resolved nothing", zap.Int("suggested", len(fresh)))
			return nil, nil
		}
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale extension", zap.Uint64("generation", gen))
		return nil, nil
	}

	s.playback.Append(tracks)
	for _, track := range tracks {
		s.exclusions.Add(s.keyFunc(track.Suggestion()))
	}

	s.logger.Info("Queue extended",
		zap.Int("added", len(tracks)),
		zap.Int("length", s.playback.Len()),
		zap.Int("position", s.playback.Position()))

	return tracks, nil
}

// filterKnown drops songs already offered to the session. Callers hold the lock.
func (s *Session) filterKnown(songs []SongSuggestion) []SongSuggestion {
	fresh := make([]SongSuggestion, 0, len(songs))
	seen := make(map[string]struct{}, len(songs))
	for _, song := range songs {
		key := s.keyFunc(song)
		if _, dup := seen[key]; dup || s.exclusions.Has(key) {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, song)
	}
	return fresh
}

func (s *Session) progressFunc(gen uint64) ProgressFunc {
	return func(resolved, total int) {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		if gen == s.generation {
			s.progress = Progress{Resolved: resolved, Total: total}
		}
	}
}

// Next advances to the following track, wrapping at the end.
func (s *Session) Next() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.touch()
	s.playback.Next()
	return s.snapshot()
}

// Previous returns to the preceding track, wrapping at the start.
func (s *Session) Previous() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.touch()
	s.playback.Previous()
	return s.snapshot()
}

// Seek jumps to the track at index.
func (s *Session) Seek(index int) (Snapshot, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.touch()
	if err := s.playback.Seek(index); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// TrackEnded reacts to the player reporting the end of trackID. It reports
// whether playback advanced.
func (s *Session) TrackEnded(trackID string) (Snapshot, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.touch()
	advanced := s.playback.TrackEnded(trackID)
	if !advanced {
		s.logger.Debug("Ignoring end-of-track signal", zap.String("track", trackID))
	}
	return s.snapshot(), advanced
}

func (s *Session) Snapshot() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.snapshot()
}

// Err returns the failure of the last build, if any.
func (s *Session) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastErr
}

// LastSeen reports the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastSeen
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:       s.id,
		Mood:     s.mood,
		Status:   s.status,
		Position: s.playback.Position(),
		Queue:    s.playback.Tracks(),
		Progress: s.progress,
		Warning:  s.warning,
	}
	if current, ok := s.playback.Current(); ok {
		snap.Current = &current
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}
