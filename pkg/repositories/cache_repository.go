package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/namerhq/namer-engine/pkg/database"
	"github.com/namerhq/namer-engine/pkg/models"
)

// CacheRepository provides data access for the generation and domain-check
// caches. Rows are insert-only: a refresh writes a new row that supersedes
// the old one, and reads always take the newest row for a key.
type CacheRepository interface {
	// GetGeneration returns the newest generation cache row for the content
	// hash, or nil when no row exists. Callers decide freshness.
	GetGeneration(ctx context.Context, contentHash string) (*models.GenerationCache, error)
	SaveGeneration(ctx context.Context, contentHash string, names []string) error

	// GetDomainCheck returns the newest domain cache row for the exact
	// domain string, or nil when no row exists.
	GetDomainCheck(ctx context.Context, domain string) (*models.DomainCheckCache, error)
	SaveDomainCheck(ctx context.Context, domain string, results map[string]models.TLDAvailability) error
}

type cacheRepository struct {
	db *database.DB
}

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(db *database.DB) CacheRepository {
	return &cacheRepository{db: db}
}

var _ CacheRepository = (*cacheRepository)(nil)

func (r *cacheRepository) GetGeneration(ctx context.Context, contentHash string) (*models.GenerationCache, error) {
	query := `
		SELECT id, content_hash, names, cached_at
		FROM generation_cache
		WHERE content_hash = $1
		ORDER BY cached_at DESC
		LIMIT 1`

	var entry models.GenerationCache
	var namesJSON []byte
	err := r.db.QueryRow(ctx, query, contentHash).Scan(
		&entry.ID, &entry.ContentHash, &namesJSON, &entry.CachedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query generation cache: %w", err)
	}

	if err := json.Unmarshal(namesJSON, &entry.Names); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached names: %w", err)
	}

	return &entry, nil
}

func (r *cacheRepository) SaveGeneration(ctx context.Context, contentHash string, names []string) error {
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal names: %w", err)
	}

	query := `
		INSERT INTO generation_cache (content_hash, names, cached_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, contentHash, namesJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to save generation cache: %w", err)
	}

	return nil
}

func (r *cacheRepository) GetDomainCheck(ctx context.Context, domain string) (*models.DomainCheckCache, error) {
	query := `
		SELECT id, domain, results, cached_at
		FROM domain_check_cache
		WHERE domain = $1
		ORDER BY cached_at DESC
		LIMIT 1`

	var entry models.DomainCheckCache
	var resultsJSON []byte
	err := r.db.QueryRow(ctx, query, domain).Scan(
		&entry.ID, &entry.Domain, &resultsJSON, &entry.CachedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query domain cache: %w", err)
	}

	if err := json.Unmarshal(resultsJSON, &entry.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached domain results: %w", err)
	}

	return &entry, nil
}

func (r *cacheRepository) SaveDomainCheck(ctx context.Context, domain string, results map[string]models.TLDAvailability) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal domain results: %w", err)
	}

	query := `
		INSERT INTO domain_check_cache (domain, results, cached_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, domain, resultsJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to save domain cache: %w", err)
	}

	return nil
}
