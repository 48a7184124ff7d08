package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

// ManagerOptions configures a SessionManager.
type ManagerOptions struct {
	Session     SessionOptions
	IdleTimeout time.Duration
	// NewExclusions returns the exclusion set of a new session.
	NewExclusions func() ExclusionSet
}

// SessionManager owns the live sessions. One mood selection is one session.
type SessionManager struct {
	recommender Recommender
	builder     *QueueBuilder
	moods       MoodStore
	metrics     Metrics
	opts        ManagerOptions
	logger      *zap.Logger

	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewSessionManager(recommender Recommender, builder *QueueBuilder, moods MoodStore,
	metrics Metrics, opts ManagerOptions, logger *zap.Logger) *SessionManager {
	if metrics == nil {
		metrics = NopMetrics
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultSessionIdleTimeoutMins * time.Minute
	}
	if opts.NewExclusions == nil {
		opts.NewExclusions = func() ExclusionSet { return newKeySet() }
	}
	return &SessionManager{
		recommender: recommender,
		builder:     builder,
		moods:       moods,
		metrics:     metrics,
		opts:        opts,
		logger:      logger,
		sessions:    make(map[string]*Session),
	}
}

// Create starts a session for mood and builds its queue before returning. When
// nothing is playable the session is kept in the failed state together with
// ErrNoPlayableTracks so the caller can show it and retry.
func (m *SessionManager) Create(ctx context.Context, mood string) (*Session, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return nil, ErrEmptyMood
	}

	session := NewSession(uuid.NewString(), m.recommender, m.builder, m.opts.NewExclusions(),
		m.opts.Session, m.logger)

	m.mutex.Lock()
	m.sessions[session.ID()] = session
	active := len(m.sessions)
	m.mutex.Unlock()
	m.metrics.SetActiveSessions(active)

	m.recordMood(ctx, mood)

	return session, session.Start(ctx, mood)
}

// Restart rebuilds an existing session for a new mood. Results of a build still
// running for the previous mood are discarded.
func (m *SessionManager) Restart(ctx context.Context, id, mood string) (*Session, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return session, ErrEmptyMood
	}

	m.recordMood(ctx, mood)

	return session, session.Start(ctx, mood)
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) Delete(id string) error {
	m.mutex.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	active := len(m.sessions)
	m.mutex.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.metrics.SetActiveSessions(active)
	m.logger.Debug("Session deleted", zap.String("session", id))
	return nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// RecentMoods lists recently used moods. A failing store yields an empty list.
func (m *SessionManager) RecentMoods(ctx context.Context) []RecentMood {
	if m.moods == nil {
		return []RecentMood{}
	}
	recent, err := m.moods.List(ctx)
	if err != nil {
		m.logger.Warn("Failed to list recent moods", zap.Error(err))
		return []RecentMood{}
	}
	return recent
}

// Run evicts idle sessions until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now().Add(-m.opts.IdleTimeout))
		case <-ctx.Done():
			return nil
		}
	}
}

// sweep removes sessions not used since cutoff and returns how many it removed.
func (m *SessionManager) sweep(cutoff time.Time) int {
	m.mutex.Lock()
	removed := 0
	for id, session := range m.sessions {
		if session.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	active := len(m.sessions)
	m.mutex.Unlock()

	if removed > 0 {
		m.metrics.SetActiveSessions(active)
		m.logger.Info("Evicted idle sessions", zap.Int("evicted", removed), zap.Int("active", active))
	}
	return removed
}

func (m *SessionManager) recordMood(ctx context.Context, mood string) {
	if m.moods == nil {
		return
	}
	if err := m.moods.Record(ctx, mood); err != nil {
		m.logger.Warn("Failed to record mood", zap.String("mood", mood), zap.Error(err))
	}
}

// keySet is the plain in-memory ExclusionSet used when no other is configured.
type keySet map[string]struct{}

func newKeySet() keySet { return keySet{} }

func (s keySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s keySet) Add(key string) { s[key] = struct{}{} }
func (s keySet) Size() int      { return len(s) }
