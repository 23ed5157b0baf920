package ident

import "sync"

// Generator supplies fresh identities for new records.
type Generator interface {
	Generate() UniqueID
}

// UUIDv7Generator generates time-sortable UUIDv7 identities.
//
// UUIDv7 embeds a timestamp in the most significant bits, so identities
// generated by one process sort by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 identity.
func (UUIDv7Generator) Generate() UniqueID {
	return New()
}

// FixedGenerator returns predetermined identities for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []UniqueID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator(a, b)
//	gen.Generate() // a
//	gen.Generate() // b
//	gen.Generate() // panic: all identities exhausted
func NewFixedGenerator(ids ...UniqueID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined identity.
//
// Panics if all identities have been consumed, which catches tests that
// create more records than they planned for.
func (g *FixedGenerator) Generate() UniqueID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all identities exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining reports how many identities are left.
func (g *FixedGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}
