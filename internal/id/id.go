package id

import (
	"sync"
	"time"

	"github.com/montra-dev/montra/internal/model"
)

// Generator hands out creation-time IDs in milliseconds since the Unix epoch.
//
// Two IDs requested within the same millisecond (or after the clock moved
// backwards) would collide, so Next never returns a value lower than or equal
// to the last one it issued or observed. A Generator is safe for concurrent
// use, so the ledger and the snapshot manager can share one.
type Generator struct {
	now  func() time.Time
	mu   sync.Mutex
	last model.ID
}

// NewGenerator creates a Generator reading the given clock. A nil clock uses time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns a new ID strictly greater than every ID seen so far.
func (g *Generator) Next() model.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := model.ID(g.now().UnixMilli())
	if next <= g.last {
		next = g.last + 1
	}
	g.last = next
	return next
}

// Observe records an ID created elsewhere (loaded from storage, imported,
// restored) so later IDs sort after it.
func (g *Generator) Observe(ids ...model.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		if id > g.last {
			g.last = id
		}
	}
}

// Last returns the highest ID issued or observed.
func (g *Generator) Last() model.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
