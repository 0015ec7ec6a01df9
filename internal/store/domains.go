package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corralhq/corral/internal/models"
)

// DomainStore handles domain admin operations and API key resolution.
type DomainStore struct {
	Base
}

// NewDomainStore creates a new DomainStore.
func NewDomainStore(base Base) *DomainStore {
	return &DomainStore{Base: base}
}

const domainColumns = "id, name, active, created_at, updated_at"

// newAPIKey generates a fresh domain API key. Only its hash is stored.
func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}
	return "crl_" + hex.EncodeToString(buf), nil
}

// CreateDomain provisions a domain and returns it with its API key. The
// key is shown exactly once; afterwards only the hash exists.
func (s *DomainStore) CreateDomain(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	apiKey, err := newAPIKey()
	if err != nil {
		return nil, err
	}

	var d models.Domain
	err = s.Pool.QueryRow(ctx,
		"INSERT INTO domains (id, name, api_key_hash) VALUES ($1, $2, $3) RETURNING "+domainColumns,
		uuid.New(), req.Name, hashAPIKey(apiKey),
	).Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateKey
		}
		return nil, fmt.Errorf("creating domain: %w", err)
	}

	return &models.DomainWithKey{Domain: d, APIKey: apiKey}, nil
}

// GetDomain fetches a domain by ID.
func (s *DomainStore) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var d models.Domain
	err := s.Pool.QueryRow(ctx,
		"SELECT "+domainColumns+" FROM domains WHERE id = $1", id,
	).Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}
		return nil, fmt.Errorf("fetching domain: %w", err)
	}

	return &d, nil
}

// GetDomainByAPIKey resolves an API key to its active domain.
func (s *DomainStore) GetDomainByAPIKey(ctx context.Context, apiKey string) (*models.Domain, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var d models.Domain
	err := s.Pool.QueryRow(ctx,
		"SELECT "+domainColumns+" FROM domains WHERE api_key_hash = $1 AND active", hashAPIKey(apiKey),
	).Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}
		return nil, fmt.Errorf("looking up domain by API key: %w", err)
	}

	return &d, nil
}

// ListDomains returns every domain, newest first.
func (s *DomainStore) ListDomains(ctx context.Context) ([]models.Domain, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, "SELECT "+domainColumns+" FROM domains ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	defer rows.Close()

	domains := make([]models.Domain, 0, 16)
	for rows.Next() {
		var d models.Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning domain row: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating domain rows: %w", err)
	}

	return domains, nil
}

// UpdateDomain renames or (de)activates a domain.
func (s *DomainStore) UpdateDomain(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if req.Name != nil {
		args = append(args, *req.Name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Active != nil {
		args = append(args, *req.Active)
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", len(args)))
	}

	if len(setClauses) == 0 {
		return s.GetDomain(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE domains SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), domainColumns)

	var d models.Domain
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateKey
		}
		return nil, fmt.Errorf("updating domain: %w", err)
	}

	return &d, nil
}

// RotateDomainKey replaces a domain's API key and returns the new key.
// The old key stops working immediately.
func (s *DomainStore) RotateDomainKey(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	apiKey, err := newAPIKey()
	if err != nil {
		return nil, err
	}

	var d models.Domain
	err = s.Pool.QueryRow(ctx,
		"UPDATE domains SET api_key_hash = $1, updated_at = NOW() WHERE id = $2 RETURNING "+domainColumns,
		hashAPIKey(apiKey), id,
	).Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}
		return nil, fmt.Errorf("rotating domain key: %w", err)
	}

	return &models.DomainWithKey{Domain: d, APIKey: apiKey}, nil
}

// DeleteDomain removes a domain and, through FK cascades, all of its
// records.
func (s *DomainStore) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, "DELETE FROM domains WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrDomainNotFound
	}

	return nil
}
