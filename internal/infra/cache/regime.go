// Package cache memoizes regime analysis. The regime is a pure function of
// the speech history, so every request in a round after the first is a hit.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// DefaultSize is used when a non-positive size is requested.
const DefaultSize = 256

type key [sha256.Size]byte

// RegimeCache wraps perception.Analyze with an LRU keyed by speech content.
// Returned regimes are shared and must not be modified.
type RegimeCache struct {
	entries *lru.Cache[key, perception.Regime]
	hits    atomic.Int64
	misses  atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewRegimeCache creates a cache holding up to size regimes.
func NewRegimeCache(size int) (*RegimeCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[key, perception.Regime](size)
	if err != nil {
		return nil, err
	}
	return &RegimeCache{entries: entries}, nil
}

// Analyze returns the regime for rc, computing it on a miss.
func (c *RegimeCache) Analyze(rc *game.RoleContext) perception.Regime {
	speeches := rc.Speeches()
	k := fingerprint(speeches)
	if r, ok := c.entries.Get(k); ok {
		c.hits.Add(1)
		return r
	}
	c.misses.Add(1)
	r := perception.Classify(perception.Extract(speeches))
	c.entries.Add(k, r)
	return r
}

// Stats returns a snapshot of the counters.
func (c *RegimeCache) Stats() Stats {
	return Stats{Size: c.entries.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Purge drops every entry. Mind.StartGame calls it through agent.Purger.
func (c *RegimeCache) Purge() {
	c.entries.Purge()
}

// fingerprint hashes the fields that extraction reads.
func fingerprint(speeches []game.SpeechRecord) key {
	h := sha256.New()
	var buf [8]byte
	for _, s := range speeches {
		binary.BigEndian.PutUint64(buf[:], uint64(s.PlayerID))
		h.Write(buf[:])
		h.Write([]byte(s.Type))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(len(s.Content)))
		h.Write(buf[:])
		h.Write([]byte(s.Content))
	}
	var k key
	copy(k[:], h.Sum(nil))
	return k
}
