package dedup

import (
	"context"

	"github.com/dmitrymomot/biolink/pkg/cache"
)

// Memory is an in-process Deduper bounded by an LRU window. Suited for
// single-instance deployments; use Redis when beacons can land on
// different instances.
type Memory struct {
	seen *cache.LRU[string, struct{}]
}

// NewMemory creates an in-process deduper remembering up to capacity IDs.
func NewMemory(capacity int) *Memory {
	return &Memory{seen: cache.NewLRU[string, struct{}](capacity)}
}

func (m *Memory) Seen(_ context.Context, id string) bool {
	if _, ok := m.seen.Get(id); ok {
		return true
	}
	m.seen.PutTTL(id, struct{}{}, Window)
	return false
}
