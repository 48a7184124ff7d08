// Package main provides the MoodTune CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"moodtune/internal/core"
	"moodtune/internal/flood"
	httpserver "moodtune/internal/http"
	"moodtune/internal/i18n"
	"moodtune/internal/llm"
	"moodtune/internal/store"
	"moodtune/pkg/fuzzy"
	"moodtune/pkg/musiclink"
)

const (
	defaultServerHost = "0.0.0.0"
	noneProvider      = "none"
	envPrefix         = "MOODTUNE"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "moodtune",
	Short: "MoodTune - mood based music player",
	Long: `MoodTune turns a mood into a playable queue: a language model suggests matching songs,
each suggestion is resolved to a YouTube video and the results are served as a playback session
with auto-advance and on-demand queue extension.`,
	RunE: runMoodTune,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")
	flags.String("llm-provider", noneProvider, "LLM provider (openai, anthropic, ollama, none)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("llm-api-key", "", "LLM API key")
	flags.String("llm-base-url", "", "LLM base URL (Ollama or OpenAI-compatible endpoints)")
	flags.Int("llm-timeout-secs", core.DefaultRecommendTimeoutSecs, "Recommendation request timeout in seconds")
	flags.Int("llm-max-suggestions", core.MaxRecommendCount, "Maximum songs per recommendation")
	flags.String("youtube-api-key", "", "YouTube Data API key (optional, results page is used without it)")
	flags.Int("youtube-timeout-secs", core.DefaultResolveTimeoutSecs, "Video search timeout in seconds")
	flags.Int("youtube-cache-size", core.DefaultSearchCacheSize, "Number of cached video searches")
	flags.Int("youtube-cache-ttl-mins", core.DefaultSearchCacheTTLMins, "Lifetime of cached video searches in minutes")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.Int("server-read-timeout-secs", 10, "HTTP server read timeout in seconds")
	flags.Int("server-write-timeout-secs", 120, "HTTP server write timeout in seconds")
	flags.String("store-path", "./moodtune.db", "SQLite database for recent moods (empty disables persistence)")
	flags.Int("recent-moods-limit", core.DefaultRecentMoodsLimit, "Number of recent moods to remember")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Default message language (%s)", supportedLangs))
	flags.Int("recommend-count", core.DefaultRecommendCount, "Songs requested per queue build")
	flags.Int("resolve-batch-size", core.DefaultResolveBatchSize, "Concurrent video searches per batch")
	flags.Int("session-idle-timeout-mins", core.DefaultSessionIdleTimeoutMins, "Idle minutes before a session is evicted")
	flags.Int("end-signal-debounce-millis", core.DefaultEndSignalDebounceMillis,
		"Window in which a repeated end-of-track signal is ignored")
	flags.Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute,
		"Maximum expensive requests per client per minute (0 disables)")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureLLM(cfg)
	configureYouTube(cfg)
	configureServer(cfg)
	configureStore(cfg)
	configureApp(cfg)
	configureLogging(cfg)

	return cfg
}

func configureLLM(cfg *core.Config) {
	cfg.LLM.Provider = viper.GetString("llm-provider")
	cfg.LLM.Model = viper.GetString("llm-model")
	cfg.LLM.APIKey = viper.GetString("llm-api-key")
	cfg.LLM.BaseURL = viper.GetString("llm-base-url")
	cfg.LLM.TimeoutSecs = viper.GetInt("llm-timeout-secs")
	cfg.LLM.MaxSuggestions = viper.GetInt("llm-max-suggestions")
}

func configureYouTube(cfg *core.Config) {
	cfg.YouTube.APIKey = viper.GetString("youtube-api-key")
	cfg.YouTube.TimeoutSecs = viper.GetInt("youtube-timeout-secs")
	cfg.YouTube.CacheSize = viper.GetInt("youtube-cache-size")
	cfg.YouTube.CacheTTLMinutes = viper.GetInt("youtube-cache-ttl-mins")
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Server.ReadTimeout = time.Duration(viper.GetInt("server-read-timeout-secs")) * time.Second
	cfg.Server.WriteTimeout = time.Duration(viper.GetInt("server-write-timeout-secs")) * time.Second
}

func configureLogging(cfg *core.Config) {
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureStore(cfg *core.Config) {
	cfg.Store.Path = viper.GetString("store-path")
	cfg.Store.RecentMoodsLimit = viper.GetInt("recent-moods-limit")
	if cfg.Store.RecentMoodsLimit <= 0 {
		cfg.Store.RecentMoodsLimit = core.DefaultRecentMoodsLimit
	}
}

func configureApp(cfg *core.Config) {
	cfg.App.DefaultCount = viper.GetInt("recommend-count")
	cfg.App.ResolveBatchSize = viper.GetInt("resolve-batch-size")
	if cfg.App.ResolveBatchSize <= 0 {
		fmt.Printf("Warning: Invalid resolve batch size (%d), using default (%d)\n",
			cfg.App.ResolveBatchSize, core.DefaultResolveBatchSize)
		cfg.App.ResolveBatchSize = core.DefaultResolveBatchSize
	}
	cfg.App.SessionIdleTimeoutMins = viper.GetInt("session-idle-timeout-mins")
	if cfg.App.SessionIdleTimeoutMins <= 0 {
		fmt.Printf("Warning: Invalid session idle timeout (%d), using default (%d)\n",
			cfg.App.SessionIdleTimeoutMins, core.DefaultSessionIdleTimeoutMins)
		cfg.App.SessionIdleTimeoutMins = core.DefaultSessionIdleTimeoutMins
	}
	cfg.App.EndSignalDebounceMillis = viper.GetInt("end-signal-debounce-millis")
	if cfg.App.EndSignalDebounceMillis <= 0 {
		cfg.App.EndSignalDebounceMillis = core.DefaultEndSignalDebounceMillis
	}

	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute < 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runMoodTune(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting MoodTune",
		zap.String("llm_provider", config.LLM.Provider),
		zap.Bool("youtube_api", config.YouTube.APIKey != ""),
		zap.String("language", config.App.Language))

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	svcs, err := initializeServices()
	if err != nil {
		return err
	}
	defer svcs.close()

	return runServices(ctx, svcs)
}

type services struct {
	httpServer *httpserver.Server
	sessions   *core.SessionManager
	floodgate  *flood.Floodgate
	moods      *store.RecentMoodStore
}

func (s *services) close() {
	if s.floodgate != nil {
		s.floodgate.Stop()
	}
	if s.moods != nil {
		if err := s.moods.Close(); err != nil {
			logger.Debug("Failed to close mood store", zap.Error(err))
		}
	}
}

func initializeServices() (*services, error) {
	metrics := httpserver.NewMetrics(prometheus.NewRegistry())

	provider, err := createRecommender(metrics)
	if err != nil {
		return nil, err
	}

	searcher := musiclink.NewManager(musiclink.Options{
		APIKey:    config.YouTube.APIKey,
		Timeout:   time.Duration(config.YouTube.TimeoutSecs) * time.Second,
		CacheSize: config.YouTube.CacheSize,
		CacheTTL:  time.Duration(config.YouTube.CacheTTLMinutes) * time.Minute,
	})
	logger.Info("Video search configured", zap.Strings("backends", searcher.Backends()))
	videoSearcher := core.NewMusicLinkSearcher(searcher)

	builder := core.NewQueueBuilder(videoSearcher, config.App.ResolveBatchSize,
		time.Duration(config.YouTube.TimeoutSecs)*time.Second, metrics, logger.Named("core"))

	svcs := &services{}

	var moods core.MoodStore
	if config.Store.Path != "" {
		moodStore, storeErr := store.OpenRecentMoodStore(config.Store.Path, config.Store.RecentMoodsLimit,
			logger.Named("store"))
		if storeErr != nil {
			return nil, fmt.Errorf("failed to open mood store: %w", storeErr)
		}
		svcs.moods = moodStore
		moods = moodStore
	}

	normalizer := fuzzy.NewNormalizer()
	sessions := core.NewSessionManager(provider, builder, moods, metrics, core.ManagerOptions{
		Session: core.SessionOptions{
			Count:             config.App.DefaultCount,
			EndSignalDebounce: time.Duration(config.App.EndSignalDebounceMillis) * time.Millisecond,
			KeyFunc: func(s core.SongSuggestion) string {
				return normalizer.SongKey(s.Artist, s.Title)
			},
		},
		IdleTimeout: time.Duration(config.App.SessionIdleTimeoutMins) * time.Minute,
		NewExclusions: func() core.ExclusionSet {
			return store.NewExclusionSet(store.DefaultExclusionCapacity, store.DefaultFalsePositiveRate)
		},
	}, logger.Named("core"))
	svcs.sessions = sessions

	if config.App.FloodLimitPerMinute > 0 {
		svcs.floodgate = flood.New(config.App.FloodLimitPerMinute)
	}

	api := httpserver.NewAPI(httpserver.Dependencies{
		Recommender: provider,
		Searcher:    videoSearcher,
		Sessions:    sessions,
		Floodgate:   svcs.floodgate,
		Language:    config.App.Language,
	}, metrics, logger.Named("http"))
	svcs.httpServer = httpserver.NewServer(&config.Server, api, metrics, logger.Named("http"))

	return svcs, nil
}

func createRecommender(metrics *httpserver.Metrics) (*llm.Provider, error) {
	provider, err := llm.NewProvider(&config.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	provider.SetRecorder(metrics)

	if !provider.Configured() {
		logger.Warn("No LLM provider configured, recommendations use the fallback songs",
			zap.String("provider", provider.Name()))
	}
	return provider, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.sessions.Run(gCtx)
	})

	logger.Info("MoodTune started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("MoodTune stopped with error", zap.Error(err))
		return err
	}

	logger.Info("MoodTune stopped gracefully")
	return nil
}

func validateConfig(cfg *core.Config) error {
	if err := validateLLMConfig(cfg); err != nil {
		return err
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.App.DefaultCount <= 0 || cfg.App.DefaultCount > core.MaxRecommendCount {
		return fmt.Errorf("recommend count must be between 1 and %d, got %d",
			core.MaxRecommendCount, cfg.App.DefaultCount)
	}

	if cfg.YouTube.TimeoutSecs <= 0 {
		return fmt.Errorf("youtube timeout must be positive, got %d", cfg.YouTube.TimeoutSecs)
	}

	return nil
}

func validateLLMConfig(cfg *core.Config) error {
	switch cfg.LLM.Provider {
	case "openai", "anthropic", "ollama", noneProvider, "":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	if cfg.LLM.TimeoutSecs <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %d", cfg.LLM.TimeoutSecs)
	}

	// A missing API key is not fatal: recommendations fall back to the static lists.
	return nil
}
