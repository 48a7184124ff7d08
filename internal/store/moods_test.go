package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"moodtune/internal/core"
)

var _ core.MoodStore = (*RecentMoodStore)(nil)

func newTestMoodStore(t *testing.T, limit int) *RecentMoodStore {
	t.Helper()
	store, err := OpenRecentMoodStore(filepath.Join(t.TempDir(), "moods.db"), limit, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenRecentMoodStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	store.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return store
}

func listMoods(t *testing.T, store *RecentMoodStore) []string {
	t.Helper()
	recent, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	moods := make([]string, 0, len(recent))
	for _, r := range recent {
		moods = append(moods, r.Mood)
	}
	return moods
}

func TestRecentMoodStore_Empty(t *testing.T) {
	store := newTestMoodStore(t, 5)

	recent, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if recent == nil || len(recent) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", recent)
	}
}

func TestRecentMoodStore_MostRecentFirst(t *testing.T) {
	tests := []struct {
		name     string
		record   []string
		expected []string
	}{
		{
			name:     "order",
			record:   []string{"잔잔한", "신나는", "집중"},
			expected: []string{"집중", "신나는", "잔잔한"},
		},
		{
			name:     "duplicate moves to front",
			record:   []string{"잔잔한", "신나는", "잔잔한"},
			expected: []string{"잔잔한", "신나는"},
		},
		{
			name:     "bounded",
			record:   []string{"a", "b", "c", "d", "e", "f", "g"},
			expected: []string{"g", "f", "e", "d", "c"},
		},
		{
			name:     "trimmed",
			record:   []string{" 비 오는 날 ", "비 오는 날"},
			expected: []string{"비 오는 날"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestMoodStore(t, 5)
			for _, mood := range tt.record {
				if err := store.Record(context.Background(), mood); err != nil {
					t.Fatalf("Record(%q) error = %v", mood, err)
				}
			}

			if got := listMoods(t, store); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("List() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRecentMoodStore_UsedAt(t *testing.T) {
	store := newTestMoodStore(t, 5)

	if err := store.Record(context.Background(), "카페"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Record(context.Background(), "카페"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	recent, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 mood, got %d", len(recent))
	}
	want := time.Date(2024, 10, 1, 12, 2, 0, 0, time.UTC)
	if !recent[0].UsedAt.Equal(want) {
		t.Errorf("UsedAt = %v, want %v", recent[0].UsedAt, want)
	}
}

func TestRecentMoodStore_RejectsEmptyMood(t *testing.T) {
	store := newTestMoodStore(t, 5)

	if err := store.Record(context.Background(), "   "); !errors.Is(err, core.ErrEmptyMood) {
		t.Errorf("Record() error = %v, want %v", err, core.ErrEmptyMood)
	}
}

func TestRecentMoodStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moods.db")

	store, err := OpenRecentMoodStore(path, 5, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenRecentMoodStore() error = %v", err)
	}
	if err := store.Record(context.Background(), "드라이브"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	_ = store.Close()

	reopened, err := OpenRecentMoodStore(path, 5, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenRecentMoodStore() error = %v", err)
	}
	defer reopened.Close()

	if got := listMoods(t, reopened); !reflect.DeepEqual(got, []string{"드라이브"}) {
		t.Errorf("List() = %v, want [드라이브]", got)
	}
}
