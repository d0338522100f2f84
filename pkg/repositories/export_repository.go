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

// ExportRepository provides data access for export records.
type ExportRepository interface {
	Create(ctx context.Context, export *models.Export) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Export, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Export, error)
	// IncrementDownloadCount atomically bumps the download counter.
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type exportRepository struct {
	db *database.DB
}

// NewExportRepository creates a new ExportRepository.
func NewExportRepository(db *database.DB) ExportRepository {
	return &exportRepository{db: db}
}

var _ ExportRepository = (*exportRepository)(nil)

const exportColumns = `
	id, user_id, exportable_kind, exportable_id, format,
	file_path, file_size, expires_at, download_count, created_at`

func (r *exportRepository) Create(ctx context.Context, export *models.Export) error {
	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO exports (
			id, user_id, exportable_kind, exportable_id, format,
			file_path, file_size, expires_at, download_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		export.ID, export.UserID, export.ExportableKind, export.ExportableID, export.Format,
		export.FilePath, export.FileSize, export.ExpiresAt, export.DownloadCount, export.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

func (r *exportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Export, error) {
	query := `SELECT ` + exportColumns + ` FROM exports WHERE id = $1`

	export, err := scanExportRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return export, nil
}

func (r *exportRepository) ListByUser(ctx context.Context, userID string) ([]*models.Export, error) {
	query := `SELECT ` + exportColumns + `
		FROM exports
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var exports []*models.Export
	for rows.Next() {
		export, err := scanExportRow(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, export)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return exports, nil
}

func (r *exportRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE exports SET download_count = download_count + 1 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *exportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM exports WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanExportRow(row pgx.Row) (*models.Export, error) {
	var export models.Export

	err := row.Scan(
		&export.ID, &export.UserID, &export.ExportableKind, &export.ExportableID, &export.Format,
		&export.FilePath, &export.FileSize, &export.ExpiresAt, &export.DownloadCount, &export.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	return &export, nil
}
