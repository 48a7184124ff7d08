package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moodtune/internal/core"
	"moodtune/pkg/fuzzy"
)

const (
	statusOK           = "ok"
	statusError        = "error"
	statusInvalid      = "invalid"
	statusEmpty        = "empty"
	statusUnconfigured = "unconfigured"
)

// LLMClient sends one system+user prompt pair to a text-generation service and returns the raw
// text of the answer.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CallRecorder counts recommendation calls by provider and outcome.
type CallRecorder interface {
	RecordLLMCall(provider, status string)
}

// Provider turns a mood into song suggestions. It never fails: every fault degrades to the
// static fallback list.
type Provider struct {
	config     *core.LLMConfig
	logger     *zap.Logger
	client     LLMClient
	name       string
	normalizer *fuzzy.Normalizer
	recorder   CallRecorder
}

func NewProvider(config *core.LLMConfig, logger *zap.Logger) (*Provider, error) {
	var client LLMClient
	var err error

	name := config.Provider
	switch config.Provider {
	case "openai":
		client, err = NewOpenAIClient(config, logger)
	case "anthropic":
		client, err = NewAnthropicClient(config, logger)
	case "ollama":
		client, err = NewOllamaClient(config, logger)
	case "none", "":
		name = "none"
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		// A missing credential is not fatal; recommendations degrade to the fallback list.
		logger.Warn("LLM provider unavailable, using fallback songs",
			zap.String("provider", config.Provider),
			zap.Error(err))
		client = nil
	}

	return NewProviderWithClient(config, name, client, logger), nil
}

// NewProviderWithClient creates a provider around an existing client. A nil client always
// yields the fallback list.
func NewProviderWithClient(config *core.LLMConfig, name string, client LLMClient, logger *zap.Logger) *Provider {
	return &Provider{
		config:     config,
		logger:     logger,
		client:     client,
		name:       name,
		normalizer: fuzzy.NewNormalizer(),
	}
}

// SetRecorder installs the metrics sink for recommendation calls.
func (p *Provider) SetRecorder(recorder CallRecorder) {
	p.recorder = recorder
}

// Name returns the configured provider name.
func (p *Provider) Name() string {
	return p.name
}

// Configured reports whether recommendations can come from a live service.
func (p *Provider) Configured() bool {
	return p.client != nil
}

// Recommend asks the service for count songs matching mood, leaving out the "artist title"
// strings in exclude.
func (p *Provider) Recommend(ctx context.Context, mood string, count int, exclude []string) core.Recommendation {
	count = p.clampCount(count)

	if p.client == nil {
		return p.fallback(mood, statusUnconfigured, "recommendation provider not configured", nil)
	}

	if p.config.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.config.TimeoutSecs)*time.Second)
		defer cancel()
	}

	p.logger.Debug("Requesting recommendations",
		zap.String("provider", p.name),
		zap.String("mood", mood),
		zap.Int("count", count),
		zap.Int("exclude", len(exclude)))

	content, err := p.client.Complete(ctx, systemPrompt, buildUserPrompt(mood, count, exclude))
	if err != nil {
		return p.fallback(mood, statusError, "recommendation request failed", err)
	}

	songs, err := parseSuggestions(content)
	if err != nil {
		p.logger.Debug("Unparsable recommendation response", zap.String("content", content))
		return p.fallback(mood, statusInvalid, "malformed recommendation response", err)
	}

	songs = p.dropExcluded(songs, exclude)
	if len(songs) == 0 {
		return p.fallback(mood, statusEmpty, "no new songs in recommendation response", nil)
	}
	if len(songs) > count {
		songs = songs[:count]
	}

	p.record(statusOK)
	p.logger.Info("Recommendations received",
		zap.String("provider", p.name),
		zap.String("mood", mood),
		zap.Int("songs", len(songs)))

	return core.Recommendation{Songs: songs}
}

// dropExcluded removes songs whose normalized "artist title" is excluded or already seen.
func (p *Provider) dropExcluded(songs []core.SongSuggestion, exclude []string) []core.SongSuggestion {
	seen := make(map[string]struct{}, len(exclude)+len(songs))
	for _, query := range exclude {
		seen[p.normalizer.QueryKey(query)] = struct{}{}
	}

	kept := songs[:0]
	for _, song := range songs {
		key := p.normalizer.SongKey(song.Artist, song.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, song)
	}
	return kept
}

func (p *Provider) clampCount(count int) int {
	if count <= 0 {
		count = core.DefaultRecommendCount
	}
	limit := p.config.MaxSuggestions
	if limit <= 0 || limit > core.MaxRecommendCount {
		limit = core.MaxRecommendCount
	}
	return min(count, limit)
}

func (p *Provider) fallback(mood, status, reason string, err error) core.Recommendation {
	p.record(status)

	fields := []zap.Field{
		zap.String("provider", p.name),
		zap.String("mood", mood),
		zap.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if status == statusUnconfigured {
		p.logger.Debug("Using fallback songs", fields...)
	} else {
		p.logger.Warn("Using fallback songs", fields...)
	}

	return core.Recommendation{
		Songs:    FallbackSongs(mood),
		Fallback: true,
		Reason:   reason,
	}
}

func (p *Provider) record(status string) {
	if p.recorder != nil {
		p.recorder.RecordLLMCall(p.name, status)
	}
}
