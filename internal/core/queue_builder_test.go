package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Mock implementations for testing

type mockSearcher struct {
	mutex    sync.Mutex
	results  map[string]*VideoResult
	failing  map[string]bool
	delay    time.Duration
	calls    []string
	inFlight int
	maxSeen  int
}

func newMockSearcher() *mockSearcher {
	return &mockSearcher{
		results: make(map[string]*VideoResult),
		failing: make(map[string]bool),
	}
}

func (m *mockSearcher) add(song SongSuggestion, videoID string) {
	m.results[song.Query()] = &VideoResult{
		VideoID:   videoID,
		Title:     song.Title + " (Official Video)",
		Thumbnail: "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg",
		Channel:   song.Artist,
	}
}

func (m *mockSearcher) Search(ctx context.Context, query string) (*VideoResult, error) {
	m.mutex.Lock()
	m.calls = append(m.calls, query)
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	result := m.results[query]
	failing := m.failing[query]
	m.mutex.Unlock()

	defer func() {
		m.mutex.Lock()
		m.inFlight--
		m.mutex.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failing {
		return nil, errors.New("search backend unavailable")
	}
	if result == nil {
		return nil, nil
	}
	copied := *result
	return &copied, nil
}

func (m *mockSearcher) callCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.calls)
}

type mockMetrics struct {
	mutex    sync.Mutex
	resolves map[string]int
	builds   int
	active   int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{resolves: make(map[string]int)}
}

func (m *mockMetrics) RecordResolve(status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.resolves[status]++
}

func (m *mockMetrics) ObserveQueueBuild(_ time.Duration, _ int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.builds++
}

func (m *mockMetrics) SetActiveSessions(count int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.active = count
}

func makeSongs(prefix string, n int) []SongSuggestion {
	songs := make([]SongSuggestion, n)
	for i := range songs {
		songs[i] = SongSuggestion{
			Title:  fmt.Sprintf("%s Song %d", prefix, i),
			Artist: fmt.Sprintf("%s Artist %d", prefix, i),
		}
	}
	return songs
}

func TestQueueBuilder_DropsUnresolved(t *testing.T) {
	songs := makeSongs("Calm", 10)
	searcher := newMockSearcher()
	metrics := newMockMetrics()

	// Songs 2, 5 and 8 never resolve: one errors, two have no hit.
	for i, song := range songs {
		switch i {
		case 2:
			searcher.failing[song.Query()] = true
		case 5, 8:
		default:
			searcher.add(song, fmt.Sprintf("vid%02d", i))
		}
	}

	builder := NewQueueBuilder(searcher, 3, time.Second, metrics, zap.NewNop())
	tracks, err := builder.BuildQueue(context.Background(), songs, nil)
	if err != nil {
		t.Fatalf("BuildQueue() error = %v", err)
	}

	if len(tracks) != 7 {
		t.Fatalf("Expected 7 tracks, got %d", len(tracks))
	}

	wantOrder := []string{"vid00", "vid01", "vid03", "vid04", "vid06", "vid07", "vid09"}
	for i, track := range tracks {
		if track.VideoID != wantOrder[i] {
			t.Errorf("Track %d: expected video %s, got %s", i, wantOrder[i], track.VideoID)
		}
		if track.ID == "" {
			t.Errorf("Track %d has empty ID", i)
		}
	}

	if searcher.callCount() != 10 {
		t.Errorf("Expected one search per suggestion (10), got %d", searcher.callCount())
	}
	if metrics.resolves[resolveStatusOK] != 7 {
		t.Errorf("Expected 7 ok resolutions, got %d", metrics.resolves[resolveStatusOK])
	}
	if metrics.resolves[resolveStatusError] != 1 {
		t.Errorf("Expected 1 failed resolution, got %d", metrics.resolves[resolveStatusError])
	}
	if metrics.resolves[resolveStatusNotFound] != 2 {
		t.Errorf("Expected 2 not-found resolutions, got %d", metrics.resolves[resolveStatusNotFound])
	}
	if metrics.builds != 1 {
		t.Errorf("Expected 1 observed build, got %d", metrics.builds)
	}
}

func TestQueueBuilder_BatchesBoundConcurrency(t *testing.T) {
	songs := makeSongs("Upbeat", 10)
	searcher := newMockSearcher()
	searcher.delay = 10 * time.Millisecond
	for i, song := range songs {
		searcher.add(song, fmt.Sprintf("vid%02d", i))
	}

	var progress [][2]int
	builder := NewQueueBuilder(searcher, 3, time.Second, nil, zap.NewNop())
	tracks, err := builder.BuildQueue(context.Background(), songs, func(resolved, total int) {
		progress = append(progress, [2]int{resolved, total})
	})
	if err != nil {
		t.Fatalf("BuildQueue() error = %v", err)
	}
	if len(tracks) != 10 {
		t.Fatalf("Expected 10 tracks, got %d", len(tracks))
	}

	if searcher.maxSeen > 3 {
		t.Errorf("Expected at most 3 concurrent searches, saw %d", searcher.maxSeen)
	}

	want := [][2]int{{3, 10}, {6, 10}, {9, 10}, {10, 10}}
	if len(progress) != len(want) {
		t.Fatalf("Expected %d progress reports, got %d: %v", len(want), len(progress), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("Progress %d: expected %v, got %v", i, want[i], progress[i])
		}
	}
}

func TestQueueBuilder_NothingResolved(t *testing.T) {
	searcher := newMockSearcher()
	builder := NewQueueBuilder(searcher, 3, time.Second, nil, zap.NewNop())

	tests := []struct {
		name  string
		songs []SongSuggestion
	}{
		{name: "no suggestions", songs: nil},
		{name: "no hits", songs: makeSongs("Sad", 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, err := builder.BuildQueue(context.Background(), tt.songs, nil)
			if !errors.Is(err, ErrNoPlayableTracks) {
				t.Errorf("Expected ErrNoPlayableTracks, got %v", err)
			}
			if len(tracks) != 0 {
				t.Errorf("Expected no tracks, got %d", len(tracks))
			}
		})
	}
}

func TestQueueBuilder_CancelledContext(t *testing.T) {
	songs := makeSongs("Calm", 6)
	searcher := newMockSearcher()
	for i, song := range songs {
		searcher.add(song, fmt.Sprintf("vid%02d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewQueueBuilder(searcher, 3, time.Second, nil, zap.NewNop())
	_, err := builder.BuildQueue(ctx, songs, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if searcher.callCount() != 0 {
		t.Errorf("Expected no searches after cancellation, got %d", searcher.callCount())
	}
}

func TestQueueBuilder_TrackIDsUnique(t *testing.T) {
	song := SongSuggestion{Title: "Through the Night", Artist: "IU"}
	searcher := newMockSearcher()
	searcher.add(song, "abc123")

	builder := NewQueueBuilder(searcher, 3, time.Second, nil, zap.NewNop())
	tracks, err := builder.BuildQueue(context.Background(), []SongSuggestion{song, song, song}, nil)
	if err != nil {
		t.Fatalf("BuildQueue() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, track := range tracks {
		if seen[track.ID] {
			t.Errorf("Duplicate track ID %s", track.ID)
		}
		seen[track.ID] = true
	}
}
