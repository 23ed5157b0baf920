// Package kernel holds the collaborators every persistence component
// shares: the storage backend, the metadata configuration, the identity
// generator and the logger.
//
// A Kernel is created once per process and outlives every component bound
// to it.
package kernel

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
)

// Kernel is the shared context of the persistence components.
type Kernel struct {
	Backend backend.Backend
	Meta    *metadata.Configuration
	IDs     ident.Generator
	Logger  *slog.Logger
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithGenerator replaces the UUIDv7 identity generator.
func WithGenerator(g ident.Generator) Option {
	return func(k *Kernel) {
		if g != nil {
			k.IDs = g
		}
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.Logger = l
		}
	}
}

// New creates a Kernel.
func New(b backend.Backend, meta *metadata.Configuration, opts ...Option) (*Kernel, error) {
	if b == nil {
		return nil, errors.New("kernel: backend is required")
	}
	if meta == nil {
		return nil, errors.New("kernel: metadata is required")
	}
	k := &Kernel{
		Backend: b,
		Meta:    meta,
		IDs:     ident.UUIDv7Generator{},
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// NewID returns a fresh identity.
func (k *Kernel) NewID() ident.UniqueID {
	return k.IDs.Generate()
}

// Table looks up a declared table of the given kind.
func (k *Kernel) Table(name string, kind metadata.TableKind) (metadata.TableDef, error) {
	def, ok := k.Meta.Table(name)
	if !ok {
		return def, fmt.Errorf("%w: %s", backend.ErrUnknownTable, name)
	}
	if def.Kind != kind {
		return def, fmt.Errorf("%w: %s is a %s table, not %s", backend.ErrUnknownTable, name, def.Kind, kind)
	}
	return def, nil
}
