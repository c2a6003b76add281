package crawl

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// visitedShards is the number of independently locked partitions.
const visitedShards = 64

// VisitedSet records which URLs a crawl has already scheduled.
// It is safe for concurrent use by multiple goroutines; URLs are spread over
// shards by hash so concurrent discoveries rarely share a lock.
type VisitedSet struct {
	shards [visitedShards]visitedShard
}

type visitedShard struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	v := &VisitedSet{}
	for i := range v.shards {
		v.shards[i].urls = make(map[string]struct{})
	}
	return v
}

// Add inserts url and reports whether it was absent. The check and the
// insert happen under one lock, so for any url exactly one caller gets true.
func (v *VisitedSet) Add(url string) bool {
	s := v.shard(url)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Contains reports whether url has been added.
func (v *VisitedSet) Contains(url string) bool {
	s := v.shard(url)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.urls[url]
	return ok
}

// Len returns the number of URLs added so far.
func (v *VisitedSet) Len() int {
	n := 0
	for i := range v.shards {
		s := &v.shards[i]
		s.mu.Lock()
		n += len(s.urls)
		s.mu.Unlock()
	}
	return n
}

func (v *VisitedSet) shard(url string) *visitedShard {
	return &v.shards[xxhash.Sum64String(url)%visitedShards]
}
