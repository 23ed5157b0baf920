// Package present resolves references to display text.
//
// The persistence core never knows which entity a reference points at. It
// only needs the ResolvePresentation capability, implemented per entity
// kind by whoever owns the data (the SQLite store for directories and
// documents).
package present

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tarachom/accountingstore/internal/ident"
)

// DefaultCacheSize is the number of presentations a Cache keeps.
const DefaultCacheSize = 1024

// Resolver returns the display text for a reference.
type Resolver interface {
	ResolvePresentation(ctx context.Context, ref ident.Reference) (string, error)
}

// Func adapts a function to Resolver.
type Func func(ctx context.Context, ref ident.Reference) (string, error)

// ResolvePresentation implements Resolver.
func (f Func) ResolvePresentation(ctx context.Context, ref ident.Reference) (string, error) {
	return f(ctx, ref)
}

// Fill resolves ref and stores the result in ref.Presentation.
func Fill(ctx context.Context, r Resolver, ref *ident.Reference) error {
	text, err := r.ResolvePresentation(ctx, *ref)
	if err != nil {
		return err
	}
	ref.Presentation = text
	return nil
}

type cacheKey struct {
	kind  ident.RefKind
	id    ident.UniqueID
	table string
	text  string
}

// Cache memoizes a Resolver in a fixed-size LRU. Empty references resolve
// to "" without reaching the inner resolver. Failures are not cached.
//
// Thread-safety: safe for concurrent use.
type Cache struct {
	inner Resolver
	lru   *lru.Cache[cacheKey, string]
}

// NewCache wraps inner. A non-positive size means DefaultCacheSize.
func NewCache(inner Resolver, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("create presentation cache: %w", err)
	}
	return &Cache{inner: inner, lru: c}, nil
}

// ResolvePresentation implements Resolver.
func (c *Cache) ResolvePresentation(ctx context.Context, ref ident.Reference) (string, error) {
	if ref.IsEmpty() {
		return "", nil
	}
	key := cacheKey{kind: ref.Kind, id: ref.ID, table: ref.Table, text: ref.Text}
	if text, ok := c.lru.Get(key); ok {
		return text, nil
	}
	text, err := c.inner.ResolvePresentation(ctx, ref)
	if err != nil {
		return "", err
	}
	c.lru.Add(key, text)
	return text, nil
}

// Forget drops one reference, e.g. after the referenced row changed.
func (c *Cache) Forget(ref ident.Reference) {
	c.lru.Remove(cacheKey{kind: ref.Kind, id: ref.ID, table: ref.Table, text: ref.Text})
}

// Purge drops every cached presentation.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached presentations.
func (c *Cache) Len() int {
	return c.lru.Len()
}
