package llm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"moodtune/internal/core"
)

type fakeClient struct {
	content string
	err     error
	system  string
	user    string
}

func (f *fakeClient) Complete(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.content, f.err
}

type fakeRecorder struct {
	calls map[string]int
}

func (f *fakeRecorder) RecordLLMCall(provider, status string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[provider+":"+status]++
}

func newTestProvider(client LLMClient) (*Provider, *fakeRecorder) {
	config := core.DefaultConfig().LLM
	provider := NewProviderWithClient(&config, "fake", client, zap.NewNop())
	recorder := &fakeRecorder{}
	provider.SetRecorder(recorder)
	return provider, recorder
}

func songArray(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"title":"Song %d","artist":"Artist %d"}`, i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestProvider_Recommend(t *testing.T) {
	client := &fakeClient{content: "Here you go!\n" + songArray(12) + "\nEnjoy."}
	provider, recorder := newTestProvider(client)

	rec := provider.Recommend(context.Background(), "신나는", 10, nil)

	if rec.Fallback {
		t.Fatalf("Expected live recommendations, got fallback: %s", rec.Reason)
	}
	if len(rec.Songs) != 10 {
		t.Errorf("Expected 10 songs, got %d", len(rec.Songs))
	}
	if rec.Songs[0].Title != "Song 0" || rec.Songs[0].Artist != "Artist 0" {
		t.Errorf("Unexpected first song %+v", rec.Songs[0])
	}
	if !strings.Contains(client.user, "신나는") || !strings.Contains(client.user, "10") {
		t.Errorf("Expected mood and count in prompt, got %q", client.user)
	}
	if recorder.calls["fake:ok"] != 1 {
		t.Errorf("Expected one ok call recorded, got %v", recorder.calls)
	}
}

func TestProvider_CountBounds(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected int
	}{
		{name: "default", count: 0, expected: 10},
		{name: "negative", count: -3, expected: 10},
		{name: "small", count: 3, expected: 3},
		{name: "capped", count: 500, expected: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, _ := newTestProvider(&fakeClient{content: songArray(80)})
			rec := provider.Recommend(context.Background(), "집중", tt.count, nil)
			if len(rec.Songs) != tt.expected {
				t.Errorf("Expected %d songs, got %d", tt.expected, len(rec.Songs))
			}
		})
	}
}

func TestProvider_ExcludesSongVariants(t *testing.T) {
	client := &fakeClient{content: `[
		{"title":"Hurt (Remastered 2002)","artist":"Johnny Cash"},
		{"title":"Uptown Funk (feat. Bruno Mars)","artist":"Mark Ronson"},
		{"title":"Dynamite - Tropical Remix","artist":"BTS"},
		{"title":"Spring Day","artist":"BTS"}
	]`}
	provider, _ := newTestProvider(client)

	rec := provider.Recommend(context.Background(), "잔잔한", 10,
		[]string{"Johnny Cash Hurt", "Mark Ronson Uptown Funk", "BTS Dynamite Tropical"})

	expected := []core.SongSuggestion{{Title: "Spring Day", Artist: "BTS"}}
	if !reflect.DeepEqual(rec.Songs, expected) {
		t.Errorf("Recommend() = %+v, want %+v", rec.Songs, expected)
	}
}

func TestProvider_ExcludesQueuedSongs(t *testing.T) {
	client := &fakeClient{content: `[
		{"title":"Dynamite","artist":"BTS"},
		{"title":"Hype Boy","artist":"NewJeans"},
		{"title":"hype boy","artist":"newjeans"},
		{"title":"Uptown Funk","artist":"Mark Ronson"}
	]`}
	provider, _ := newTestProvider(client)

	rec := provider.Recommend(context.Background(), "신나는", 10, []string{"BTS Dynamite", "Mark Ronson Uptown Funk!"})

	expected := []core.SongSuggestion{{Title: "Hype Boy", Artist: "NewJeans"}}
	if !reflect.DeepEqual(rec.Songs, expected) {
		t.Errorf("Recommend() = %+v, want %+v", rec.Songs, expected)
	}
	if !strings.Contains(client.user, "BTS Dynamite") {
		t.Errorf("Expected exclusions in prompt, got %q", client.user)
	}
}

func TestProvider_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		client  LLMClient
		mood    string
		exclude []string
		status  string
	}{
		{
			name:   "not configured",
			client: nil,
			mood:   "잔잔한",
			status: statusUnconfigured,
		},
		{
			name:   "request failed",
			client: &fakeClient{err: errors.New("connection refused")},
			mood:   "신나는",
			status: statusError,
		},
		{
			name:   "malformed response",
			client: &fakeClient{content: "I cannot help with that."},
			mood:   "우울한",
			status: statusInvalid,
		},
		{
			name:   "no valid songs",
			client: &fakeClient{content: `[{"title":"","artist":"x"},{"title":42,"artist":"y"}]`},
			mood:   "우울한",
			status: statusInvalid,
		},
		{
			name:    "everything excluded",
			client:  &fakeClient{content: `[{"title":"Dynamite","artist":"BTS"}]`},
			mood:    "신나는",
			exclude: []string{"BTS Dynamite"},
			status:  statusEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, recorder := newTestProvider(tt.client)

			rec := provider.Recommend(context.Background(), tt.mood, 10, tt.exclude)

			if !rec.Fallback {
				t.Fatal("Expected fallback recommendation")
			}
			if rec.Reason == "" {
				t.Error("Expected fallback reason")
			}
			if !reflect.DeepEqual(rec.Songs, FallbackSongs(tt.mood)) {
				t.Errorf("Expected fallback songs for %s, got %+v", tt.mood, rec.Songs)
			}
			if recorder.calls["fake:"+tt.status] != 1 {
				t.Errorf("Expected status %s recorded, got %v", tt.status, recorder.calls)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		apiKey     string
		wantErr    bool
		configured bool
	}{
		{name: "none", provider: "none"},
		{name: "empty", provider: ""},
		{name: "openai without key", provider: "openai"},
		{name: "anthropic without key", provider: "anthropic"},
		{name: "openai with key", provider: "openai", apiKey: "sk-test", configured: true},
		{name: "anthropic with key", provider: "anthropic", apiKey: "sk-ant-test", configured: true},
		{name: "ollama", provider: "ollama", configured: true},
		{name: "unsupported", provider: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := core.DefaultConfig().LLM
			config.Provider = tt.provider
			config.APIKey = tt.apiKey

			provider, err := NewProvider(&config, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error for unsupported provider")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if provider.Configured() != tt.configured {
				t.Errorf("Configured() = %v, want %v", provider.Configured(), tt.configured)
			}
		})
	}
}
