package core

import (
	"time"

	"moodtune/internal/i18n"
)

const (
	// DefaultServerPort is the default HTTP port.
	DefaultServerPort = 8080
	// DefaultRecommendCount is the number of songs requested when the caller does not say.
	DefaultRecommendCount = 10
	// MaxRecommendCount caps the number of songs a single recommendation may return.
	MaxRecommendCount = 50
	// DefaultResolveBatchSize bounds how many video searches run at once.
	DefaultResolveBatchSize = 3
	// DefaultRecommendTimeoutSecs bounds one call to the text-generation service.
	DefaultRecommendTimeoutSecs = 30
	// DefaultResolveTimeoutSecs bounds one video search.
	DefaultResolveTimeoutSecs = 10
	// DefaultSessionIdleTimeoutMins is how long an untouched session is kept.
	DefaultSessionIdleTimeoutMins = 120
	// DefaultEndSignalDebounceMillis suppresses repeated end-of-track signals.
	DefaultEndSignalDebounceMillis = 3000
	// DefaultFloodLimitPerMinute is the per-client request budget on expensive routes.
	DefaultFloodLimitPerMinute = 30
	// DefaultRecentMoodsLimit is how many recent moods are remembered.
	DefaultRecentMoodsLimit = 5
	// DefaultSearchCacheSize is the number of cached video searches.
	DefaultSearchCacheSize = 512
	// DefaultSearchCacheTTLMins is how long a cached video search stays valid.
	DefaultSearchCacheTTLMins = 30
)

type Config struct {
	LLM     LLMConfig
	YouTube YouTubeConfig
	Server  ServerConfig
	Store   StoreConfig
	Log     LogConfig
	App     AppConfig
}

type LLMConfig struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	TimeoutSecs    int
	MaxSuggestions int
}

type YouTubeConfig struct {
	APIKey          string
	TimeoutSecs     int
	CacheSize       int
	CacheTTLMinutes int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	Path             string
	RecentMoodsLimit int
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language                string
	DefaultCount            int
	ResolveBatchSize        int
	SessionIdleTimeoutMins  int
	EndSignalDebounceMillis int
	FloodLimitPerMinute     int
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "",
			Model:          "",
			TimeoutSecs:    DefaultRecommendTimeoutSecs,
			MaxSuggestions: MaxRecommendCount,
		},
		YouTube: YouTubeConfig{
			TimeoutSecs:     DefaultResolveTimeoutSecs,
			CacheSize:       DefaultSearchCacheSize,
			CacheTTLMinutes: DefaultSearchCacheTTLMins,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Store: StoreConfig{
			Path:             "./moodtune.db",
			RecentMoodsLimit: DefaultRecentMoodsLimit,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:                i18n.DefaultLanguage,
			DefaultCount:            DefaultRecommendCount,
			ResolveBatchSize:        DefaultResolveBatchSize,
			SessionIdleTimeoutMins:  DefaultSessionIdleTimeoutMins,
			EndSignalDebounceMillis: DefaultEndSignalDebounceMillis,
			FloodLimitPerMinute:     DefaultFloodLimitPerMinute,
		},
	}
}
