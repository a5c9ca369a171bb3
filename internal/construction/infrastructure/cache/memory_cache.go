package cache

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/google/uuid"
)

// MaxMemoryTTL bounds how long an in-process entry lives. Other processes
// sharing the database cannot invalidate it.
const MaxMemoryTTL = 5 * time.Second

type memoryEntry struct {
	progress  queries.BuildingProgressDTO
	expiresAt time.Time
}

// MemoryProgressCache is an in-process progress cache used when Redis is not configured.
type MemoryProgressCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryProgressCache creates an in-process cache. The ttl is capped at
// MaxMemoryTTL, and a zero ttl uses that cap.
func NewMemoryProgressCache(ttl time.Duration) *MemoryProgressCache {
	if ttl <= 0 || ttl > MaxMemoryTTL {
		ttl = MaxMemoryTTL
	}
	return &MemoryProgressCache{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// TTL reports how long entries live.
func (c *MemoryProgressCache) TTL() time.Duration { return c.ttl }

// Get returns a copy of the cached progress.
func (c *MemoryProgressCache) Get(_ context.Context, buildingID uuid.UUID) (*queries.BuildingProgressDTO, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[buildingID]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return cloneProgress(&entry.progress), true, nil
}

// Set stores a copy of progress.
func (c *MemoryProgressCache) Set(_ context.Context, progress *queries.BuildingProgressDTO) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[progress.ID] = memoryEntry{progress: *cloneProgress(progress), expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops the cached progress of a building.
func (c *MemoryProgressCache) Invalidate(_ context.Context, buildingID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, buildingID)
	return nil
}

// cloneProgress copies the whole tree so cached entries share nothing with
// callers.
func cloneProgress(p *queries.BuildingProgressDTO) *queries.BuildingProgressDTO {
	out := *p
	if p.Stages == nil {
		return &out
	}
	out.Stages = make([]queries.StageProgressDTO, len(p.Stages))
	for i, st := range p.Stages {
		st.StartDate, st.EndDate = cloneTime(st.StartDate), cloneTime(st.EndDate)
		if st.Substages != nil {
			subs := make([]queries.SubstageProgressDTO, len(st.Substages))
			for j, sub := range st.Substages {
				sub.StartDate, sub.EndDate = cloneTime(sub.StartDate), cloneTime(sub.EndDate)
				subs[j] = sub
			}
			st.Substages = subs
		}
		out.Stages[i] = st
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
