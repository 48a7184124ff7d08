// Package store provides the per-session exclusion set and the persisted recent-moods list.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultExclusionCapacity bounds how many song keys a session remembers.
	DefaultExclusionCapacity = 1000
	// DefaultFalsePositiveRate is the target false positive rate of the bloom filter.
	DefaultFalsePositiveRate = 0.001
)

// ExclusionSet remembers the songs already offered to a session. The bloom filter answers
// most misses without touching the map; the map is authoritative. Once full, the least
// recently added key is forgotten.
type ExclusionSet struct {
	keys              map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	capacity          int
	falsePositiveRate float64
}

// NewExclusionSet creates an exclusion set holding at most capacity keys.
func NewExclusionSet(capacity int, falsePositiveRate float64) *ExclusionSet {
	if capacity <= 0 {
		capacity = DefaultExclusionCapacity
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = DefaultFalsePositiveRate
	}

	s := &ExclusionSet{
		keys:              make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}
	// The cache evicts on its own once full; the callback runs under s.mutex from Add.
	s.lru, _ = lru.NewWithEvict[string, struct{}](capacity, func(key string, _ struct{}) {
		delete(s.keys, key)
	})
	return s
}

// Has reports whether key was offered before.
func (s *ExclusionSet) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.bloom.TestString(key) {
		return false
	}

	_, exists := s.keys[key]
	return exists
}

// Add records key. Empty keys are ignored.
func (s *ExclusionSet) Add(key string) {
	if key == "" {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.keys[key]; exists {
		return
	}

	s.keys[key] = struct{}{}
	s.bloom.AddString(key)
	// Bloom filters cannot forget; evicted keys leave the map so Has stays exact.
	s.lru.Add(key, struct{}{})
}

// Size returns the number of remembered keys.
func (s *ExclusionSet) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.keys)
}

// Clear forgets every key.
func (s *ExclusionSet) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lru.Purge()
	s.keys = make(map[string]struct{})
	s.bloom = bloom.NewWithEstimates(uint(s.capacity), s.falsePositiveRate)
}
