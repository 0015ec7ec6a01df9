package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corralhq/corral/internal/dbpool"
	"github.com/corralhq/corral/internal/models"
)

// KeyResolver resolves API keys to domain IDs for the auth middleware. It
// carries no Base because it runs on every request, before any scope exists.
type KeyResolver struct {
	Pool *dbpool.Pool
}

// NewKeyResolver creates a new KeyResolver.
func NewKeyResolver(pool *dbpool.Pool) *KeyResolver {
	return &KeyResolver{Pool: pool}
}

// ResolveAPIKey returns the ID of the active domain owning the key. Keys of
// deactivated domains stop resolving until the domain is reactivated.
func (s *KeyResolver) ResolveAPIKey(ctx context.Context, apiKey string) (uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var id uuid.UUID

	err := s.Pool.QueryRow(ctx,
		"SELECT id FROM domains WHERE api_key_hash = $1 AND active", hashAPIKey(apiKey),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, models.ErrDomainNotFound
		}
		return uuid.Nil, fmt.Errorf("resolving domain by API key: %w", err)
	}

	return id, nil
}
