package musiclink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheSize is the number of search results kept in memory.
	DefaultCacheSize = 512
	// DefaultCacheTTL is how long a cached search result stays valid.
	DefaultCacheTTL = 30 * time.Minute
)

// ErrEmptyQuery is returned for blank queries.
var ErrEmptyQuery = errors.New("query is required")

// Options configures a Manager.
type Options struct {
	APIKey    string        // Enables the Data API backend when set.
	Timeout   time.Duration // Per request timeout.
	CacheSize int
	CacheTTL  time.Duration
}

// Manager coordinates the search backends and caches their hits.
type Manager struct {
	links    *LinkResolver
	backends []Searcher
	cache    *expirable.LRU[string, Video]
}

// NewManager creates a manager with the Data API backend (when an API key is configured) followed
// by the results-page backend.
func NewManager(opts Options) *Manager {
	var backends []Searcher
	if opts.APIKey != "" {
		backends = append(backends, NewDataAPISearcher(opts.APIKey, opts.Timeout))
	}
	backends = append(backends, NewWebSearcher(opts.Timeout))

	return NewManagerWithBackends(NewLinkResolver(opts.Timeout), opts.CacheSize, opts.CacheTTL, backends...)
}

// NewManagerWithBackends creates a manager trying backends in the given order.
func NewManagerWithBackends(links *LinkResolver, cacheSize int, cacheTTL time.Duration, backends ...Searcher) *Manager {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Manager{
		links:    links,
		backends: backends,
		cache:    expirable.NewLRU[string, Video](cacheSize, nil, cacheTTL),
	}
}

// Search returns the top video for query. YouTube links are looked up directly; anything else
// goes to the backends in order until one has a hit. ErrNotFound is returned when any backend
// answered without a result.
func (m *Manager) Search(ctx context.Context, query string) (*Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := cacheKey(query)
	if cached, ok := m.cache.Get(key); ok {
		return &cached, nil
	}

	video, err := m.lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	m.cache.Add(key, *video)
	return video, nil
}

func (m *Manager) lookup(ctx context.Context, query string) (*Video, error) {
	if m.links != nil && m.links.CanResolve(query) {
		return m.links.Resolve(ctx, query)
	}

	var errs []error
	notFound := false
	for _, backend := range m.backends {
		video, err := backend.Search(ctx, query)
		switch {
		case err == nil && video != nil && video.ID != "":
			return video, nil
		case err == nil, errors.Is(err, ErrNotFound):
			notFound = true
		default:
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		}
	}

	if notFound || len(errs) == 0 {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("all search backends failed: %w", errors.Join(errs...))
}

// CacheLen returns the number of cached results.
func (m *Manager) CacheLen() int {
	return m.cache.Len()
}

// Backends lists the backend names in lookup order.
func (m *Manager) Backends() []string {
	names := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		names = append(names, backend.Name())
	}
	return names
}

// cacheKey folds case and whitespace of text queries. Links keep their case since video IDs
// are case sensitive.
func cacheKey(query string) string {
	if IsYouTubeURL(query) {
		return query
	}
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
