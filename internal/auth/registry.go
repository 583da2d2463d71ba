package auth

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultRegistryShards is used when a non-positive shard count is requested.
const DefaultRegistryShards = 32

// SessionRecord is the server side half of a session: the id the token must carry.
type SessionRecord struct {
	SessionID string
	IssuedAt  time.Time
	// ExpiresAt is zero for sessions that live until revoked.
	ExpiresAt time.Time
}

// Expired reports whether the record has outlived its TTL at now.
func (r SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Registry is the authoritative username -> session mapping.
// Implementations must be safe for concurrent use.
type Registry interface {
	Put(username string, record SessionRecord)
	Get(username string) (SessionRecord, bool)
	Remove(username string)
	Contains(username string) bool
	Len() int
	Sweep(now time.Time) int
}

type registryShard struct {
	mu      sync.RWMutex
	records map[string]SessionRecord
}

// ShardedRegistry spreads usernames over independently locked shards.
type ShardedRegistry struct {
	shards []*registryShard
	mask   uint64
}

// NewShardedRegistry builds a registry with shards rounded up to a power of two.
func NewShardedRegistry(shards int) *ShardedRegistry {
	n := nextPowerOfTwo(shards)
	r := &ShardedRegistry{
		shards: make([]*registryShard, n),
		mask:   uint64(n - 1),
	}
	for i := range r.shards {
		r.shards[i] = &registryShard{records: make(map[string]SessionRecord)}
	}
	return r
}

func (r *ShardedRegistry) shard(username string) *registryShard {
	return r.shards[xxhash.Sum64String(username)&r.mask]
}

// Put stores the record unconditionally. The "already active" policy belongs to the caller.
func (r *ShardedRegistry) Put(username string, record SessionRecord) {
	s := r.shard(username)
	s.mu.Lock()
	s.records[username] = record
	s.mu.Unlock()
}

// Get returns the record for username, expired or not.
func (r *ShardedRegistry) Get(username string) (SessionRecord, bool) {
	s := r.shard(username)
	s.mu.RLock()
	rec, ok := s.records[username]
	s.mu.RUnlock()
	return rec, ok
}

// Remove deletes the record for username if present.
func (r *ShardedRegistry) Remove(username string) {
	s := r.shard(username)
	s.mu.Lock()
	delete(s.records, username)
	s.mu.Unlock()
}

// Contains reports whether any record exists for username.
func (r *ShardedRegistry) Contains(username string) bool {
	_, ok := r.Get(username)
	return ok
}

// Len counts stored records across all shards.
func (r *ShardedRegistry) Len() int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.records)
		s.mu.RUnlock()
	}
	return total
}

// Sweep drops records expired at now and returns how many were removed.
func (r *ShardedRegistry) Sweep(now time.Time) int {
	removed := 0
	for _, s := range r.shards {
		s.mu.Lock()
		for username, rec := range s.records {
			if rec.Expired(now) {
				delete(s.records, username)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		n = DefaultRegistryShards
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
