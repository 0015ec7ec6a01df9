// Package domain carries the active record domain through a request.
//
// Every data operation runs inside a domain scope. The scope resolves its
// domain lazily: an explicit override (an admin acting on a chosen domain)
// always wins over the session resolver, and whichever path runs, the
// outcome is memoized so one request resolves at most once. Code that runs
// outside any scope gets models.ErrNoActiveDomain, which is distinct from
// any record lookup failure.
package domain

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
)

// Resolver produces the session's domain, typically from request
// credentials. It is consulted at most once per scope.
type Resolver func(ctx context.Context) (uuid.UUID, error)

// Scope is one request's domain resolution state.
type Scope struct {
	override   uuid.UUID
	overridden bool
	resolve    Resolver

	once sync.Once
	id   uuid.UUID
	err  error
}

// NewScope creates a scope that resolves through the given resolver.
func NewScope(resolve Resolver) *Scope {
	return &Scope{resolve: resolve}
}

// NewOverrideScope creates a scope pinned to an explicit domain. Any
// session resolver is never consulted.
func NewOverrideScope(id uuid.UUID) *Scope {
	return &Scope{override: id, overridden: true}
}

// Active returns the scope's domain, resolving it on first use. Every
// later call returns the first outcome, success or failure.
func (s *Scope) Active(ctx context.Context) (uuid.UUID, error) {
	s.once.Do(func() {
		switch {
		case s.overridden:
			s.id = s.override
		case s.resolve != nil:
			s.id, s.err = s.resolve(ctx)
		default:
			s.err = models.ErrNoActiveDomain
		}

		if s.err == nil && s.id == uuid.Nil {
			s.err = models.ErrNoActiveDomain
		}
	})

	return s.id, s.err
}

type ctxKey struct{}

// WithScope attaches a scope to the context.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the context's scope, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Scope)
	return s, ok
}

// Active resolves the active domain from the context's scope.
func Active(ctx context.Context) (uuid.UUID, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, models.ErrNoActiveDomain
	}
	return s.Active(ctx)
}
