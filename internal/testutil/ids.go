package testutil

import (
	"fmt"
	"sync"

	"github.com/tarachom/accountingstore/internal/ident"
)

// SequentialIDs generates readable, strictly increasing identities:
// 00000000-0000-7000-8000-000000000001, ...000002 and so on.
//
// Thread-safety: safe for concurrent use.
type SequentialIDs struct {
	mu  sync.Mutex
	seq uint64
}

// NewSequentialIDs creates a generator whose first identity ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Generate implements ident.Generator.
func (g *SequentialIDs) Generate() ident.UniqueID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return ID(g.seq)
}

// ID returns the n-th sequential identity.
func ID(n uint64) ident.UniqueID {
	return ident.MustParse(fmt.Sprintf("00000000-0000-7000-8000-%012x", n))
}
