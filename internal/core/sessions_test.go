package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestManager(rec Recommender, searcher VideoSearcher, moods MoodStore, metrics Metrics) *SessionManager {
	builder := NewQueueBuilder(searcher, 3, time.Second, metrics, zap.NewNop())
	return NewSessionManager(rec, builder, moods, metrics, ManagerOptions{
		Session:     SessionOptions{Count: 10, EndSignalDebounce: 3 * time.Second},
		IdleTimeout: time.Hour,
	}, zap.NewNop())
}

func TestSessionManager_Create(t *testing.T) {
	songs := makeSongs("Calm", 4)
	searcher := newMockSearcher()
	resolvable(searcher, songs)
	moods := &mockMoodStore{}
	metrics := newMockMetrics()

	manager := newTestManager(&mockRecommender{responses: []Recommendation{{Songs: songs}}}, searcher, moods, metrics)

	session, err := manager.Create(context.Background(), "  잔잔한 ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	snap := session.Snapshot()
	if snap.Mood != "잔잔한" {
		t.Errorf("Expected trimmed mood, got %q", snap.Mood)
	}
	if len(snap.Queue) != 4 {
		t.Errorf("Expected 4 tracks, got %d", len(snap.Queue))
	}

	got, err := manager.Get(session.ID())
	if err != nil || got != session {
		t.Errorf("Expected Get to return the created session, got %v, %v", got, err)
	}
	if len(moods.recorded) != 1 || moods.recorded[0] != "잔잔한" {
		t.Errorf("Expected mood to be recorded, got %v", moods.recorded)
	}
	if metrics.active != 1 {
		t.Errorf("Expected active sessions gauge 1, got %d", metrics.active)
	}
}

func TestSessionManager_CreateEmptyMood(t *testing.T) {
	moods := &mockMoodStore{}
	manager := newTestManager(&mockRecommender{}, newMockSearcher(), moods, nil)

	if _, err := manager.Create(context.Background(), " "); !errors.Is(err, ErrEmptyMood) {
		t.Errorf("Expected ErrEmptyMood, got %v", err)
	}
	if manager.Len() != 0 {
		t.Errorf("Expected no session, got %d", manager.Len())
	}
	if len(moods.recorded) != 0 {
		t.Error("Expected empty mood not to be recorded")
	}
}

func TestSessionManager_CreateFailedKeepsSession(t *testing.T) {
	rec := &mockRecommender{responses: []Recommendation{{Songs: makeSongs("Sad", 3)}}}
	manager := newTestManager(rec, newMockSearcher(), nil, nil)

	session, err := manager.Create(context.Background(), "우울한")
	if !errors.Is(err, ErrNoPlayableTracks) {
		t.Fatalf("Expected ErrNoPlayableTracks, got %v", err)
	}
	if session == nil {
		t.Fatal("Expected failed session to be returned")
	}
	if _, err := manager.Get(session.ID()); err != nil {
		t.Errorf("Expected failed session to stay retrievable, got %v", err)
	}
}

func TestSessionManager_MoodStoreFailureIgnored(t *testing.T) {
	songs := makeSongs("Calm", 2)
	searcher := newMockSearcher()
	resolvable(searcher, songs)
	moods := &mockMoodStore{err: errors.New("disk full")}

	manager := newTestManager(&mockRecommender{responses: []Recommendation{{Songs: songs}}}, searcher, moods, nil)

	if _, err := manager.Create(context.Background(), "잔잔한"); err != nil {
		t.Errorf("Expected store failure to be absorbed, got %v", err)
	}
	if recent := manager.RecentMoods(context.Background()); len(recent) != 0 {
		t.Errorf("Expected empty recent moods on store failure, got %v", recent)
	}
}

func TestSessionManager_Restart(t *testing.T) {
	calm := makeSongs("Calm", 2)
	upbeat := makeSongs("Upbeat", 3)
	searcher := newMockSearcher()
	resolvable(searcher, calm)
	resolvable(searcher, upbeat)

	rec := &mockRecommender{responses: []Recommendation{{Songs: calm}, {Songs: upbeat}}}
	manager := newTestManager(rec, searcher, nil, nil)

	session, err := manager.Create(context.Background(), "잔잔한")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	restarted, err := manager.Restart(context.Background(), session.ID(), "신나는")
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if restarted != session {
		t.Error("Expected Restart to reuse the session")
	}

	snap := session.Snapshot()
	if snap.Mood != "신나는" || len(snap.Queue) != 3 || snap.Position != 0 {
		t.Errorf("Expected fresh 신나는 queue at 0, got mood=%s len=%d pos=%d", snap.Mood, len(snap.Queue), snap.Position)
	}

	if _, err := manager.Restart(context.Background(), "missing", "신나는"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManager_Delete(t *testing.T) {
	songs := makeSongs("Calm", 1)
	searcher := newMockSearcher()
	resolvable(searcher, songs)
	metrics := newMockMetrics()
	manager := newTestManager(&mockRecommender{responses: []Recommendation{{Songs: songs}}}, searcher, nil, metrics)

	session, err := manager.Create(context.Background(), "잔잔한")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := manager.Delete(session.ID()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := manager.Get(session.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := manager.Delete(session.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if metrics.active != 0 {
		t.Errorf("Expected active sessions gauge 0, got %d", metrics.active)
	}
}

func TestSessionManager_Sweep(t *testing.T) {
	songs := makeSongs("Calm", 1)
	searcher := newMockSearcher()
	resolvable(searcher, songs)
	manager := newTestManager(&mockRecommender{responses: []Recommendation{{Songs: songs}}}, searcher, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := manager.Create(context.Background(), "잔잔한"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if removed := manager.sweep(time.Now().Add(-time.Hour)); removed != 0 {
		t.Errorf("Expected no recently used session to be evicted, got %d", removed)
	}
	if removed := manager.sweep(time.Now().Add(time.Minute)); removed != 3 {
		t.Errorf("Expected 3 idle sessions evicted, got %d", removed)
	}
	if manager.Len() != 0 {
		t.Errorf("Expected no sessions left, got %d", manager.Len())
	}
}

func TestSessionManager_RunStopsOnCancel(t *testing.T) {
	manager := newTestManager(&mockRecommender{}, newMockSearcher(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- manager.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
