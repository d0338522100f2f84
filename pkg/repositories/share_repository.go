package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/database"
	"github.com/namerhq/namer-engine/pkg/models"
)

// ShareRepository provides data access for shares.
type ShareRepository interface {
	Create(ctx context.Context, share *models.Share) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Share, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Share, error)
	// IncrementViewCount atomically bumps the view counter.
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	// Deactivate revokes the share without deleting its row.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type shareRepository struct {
	db *database.DB
}

// NewShareRepository creates a new ShareRepository.
func NewShareRepository(db *database.DB) ShareRepository {
	return &shareRepository{db: db}
}

var _ ShareRepository = (*shareRepository)(nil)

const shareColumns = `
	id, user_id, shareable_kind, shareable_id, share_type,
	password_hash, expires_at, is_active, view_count, created_at`

func (r *shareRepository) Create(ctx context.Context, share *models.Share) error {
	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	if share.CreatedAt.IsZero() {
		share.CreatedAt = time.Now()
	}

	var passwordHash *string
	if share.PasswordHash != "" {
		passwordHash = &share.PasswordHash
	}

	query := `
		INSERT INTO shares (
			id, user_id, shareable_kind, shareable_id, share_type,
			password_hash, expires_at, is_active, view_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		share.ID, share.UserID, share.ShareableKind, share.ShareableID, share.ShareType,
		passwordHash, share.ExpiresAt, share.IsActive, share.ViewCount, share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	return nil
}

func (r *shareRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE id = $1`

	share, err := scanShareRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return share, nil
}

func (r *shareRepository) ListByUser(ctx context.Context, userID string) ([]*models.Share, error) {
	query := `SELECT ` + shareColumns + `
		FROM shares
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	var shares []*models.Share
	for rows.Next() {
		share, err := scanShareRow(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return shares, nil
}

func (r *shareRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shares SET view_count = view_count + 1 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *shareRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shares SET is_active = FALSE WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate share: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanShareRow(row pgx.Row) (*models.Share, error) {
	var share models.Share
	var passwordHash *string

	err := row.Scan(
		&share.ID, &share.UserID, &share.ShareableKind, &share.ShareableID, &share.ShareType,
		&passwordHash, &share.ExpiresAt, &share.IsActive, &share.ViewCount, &share.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan share: %w", err)
	}

	if passwordHash != nil {
		share.PasswordHash = *passwordHash
	}

	return &share, nil
}
