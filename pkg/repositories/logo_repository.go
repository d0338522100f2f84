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

// LogoRepository provides data access for logo generations, their rendered
// logos, and palette color variants.
type LogoRepository interface {
	CreateGeneration(ctx context.Context, gen *models.LogoGeneration) error
	GetGenerationByID(ctx context.Context, id uuid.UUID) (*models.LogoGeneration, error)
	ListGenerationsByUser(ctx context.Context, userID string, limit int) ([]*models.LogoGeneration, error)
	// UpdateGenerationStatus persists status, error message, cost and the
	// completion timestamp.
	UpdateGenerationStatus(ctx context.Context, gen *models.LogoGeneration) error
	// IncrementCompleted atomically bumps logos_completed and returns the
	// new count. Safe under concurrent render workers.
	IncrementCompleted(ctx context.Context, generationID uuid.UUID) (int, error)

	CreateLogo(ctx context.Context, logo *models.GeneratedLogo) error
	GetLogoByID(ctx context.Context, id uuid.UUID) (*models.GeneratedLogo, error)
	ListLogosByGeneration(ctx context.Context, generationID uuid.UUID) ([]*models.GeneratedLogo, error)

	CreateVariant(ctx context.Context, variant *models.LogoColorVariant) error
	// GetVariant returns the variant for a (logo, scheme) pair, or
	// apperrors.ErrNotFound when none exists.
	GetVariant(ctx context.Context, logoID uuid.UUID, colorScheme string) (*models.LogoColorVariant, error)
	ListVariantsByLogo(ctx context.Context, logoID uuid.UUID) ([]*models.LogoColorVariant, error)
}

type logoRepository struct {
	db *database.DB
}

// NewLogoRepository creates a new LogoRepository.
func NewLogoRepository(db *database.DB) LogoRepository {
	return &logoRepository{db: db}
}

var _ LogoRepository = (*logoRepository)(nil)

func (r *logoRepository) CreateGeneration(ctx context.Context, gen *models.LogoGeneration) error {
	if gen.ID == uuid.Nil {
		gen.ID = uuid.New()
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO logo_generations (
			id, user_id, session_id, business_name, business_description,
			status, total_logos_requested, logos_completed, cost_cents, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		gen.ID, gen.UserID, gen.SessionID, gen.BusinessName, gen.BusinessDescription,
		gen.Status, gen.TotalLogosRequested, gen.LogosCompleted, gen.CostCents, gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create logo generation: %w", err)
	}

	return nil
}

const logoGenerationColumns = `
	id, user_id, session_id, business_name, business_description,
	status, total_logos_requested, logos_completed, cost_cents,
	error_message, created_at, completed_at`

func (r *logoRepository) GetGenerationByID(ctx context.Context, id uuid.UUID) (*models.LogoGeneration, error) {
	query := `SELECT ` + logoGenerationColumns + ` FROM logo_generations WHERE id = $1`

	gen, err := scanLogoGenerationRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return gen, nil
}

func (r *logoRepository) ListGenerationsByUser(ctx context.Context, userID string, limit int) ([]*models.LogoGeneration, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + logoGenerationColumns + `
		FROM logo_generations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query logo generations: %w", err)
	}
	defer rows.Close()

	var generations []*models.LogoGeneration
	for rows.Next() {
		gen, err := scanLogoGenerationRow(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return generations, nil
}

func (r *logoRepository) UpdateGenerationStatus(ctx context.Context, gen *models.LogoGeneration) error {
	var errorMessage *string
	if gen.ErrorMessage != "" {
		errorMessage = &gen.ErrorMessage
	}

	query := `
		UPDATE logo_generations
		SET status = $2, cost_cents = $3, error_message = $4, completed_at = $5
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		gen.ID, gen.Status, gen.CostCents, errorMessage, gen.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update logo generation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *logoRepository) IncrementCompleted(ctx context.Context, generationID uuid.UUID) (int, error) {
	query := `
		UPDATE logo_generations
		SET logos_completed = logos_completed + 1
		WHERE id = $1
		RETURNING logos_completed`

	var completed int
	err := r.db.QueryRow(ctx, query, generationID).Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment logos_completed: %w", err)
	}

	return completed, nil
}

func (r *logoRepository) CreateLogo(ctx context.Context, logo *models.GeneratedLogo) error {
	if logo.ID == uuid.Nil {
		logo.ID = uuid.New()
	}
	if logo.CreatedAt.IsZero() {
		logo.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO generated_logos (
			id, logo_generation_id, style, variation, prompt_used,
			file_path, file_size, width, height, generation_time_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		logo.ID, logo.LogoGenerationID, logo.Style, logo.Variation, logo.PromptUsed,
		logo.FilePath, logo.FileSize, logo.Width, logo.Height, logo.GenerationTimeMS, logo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create generated logo: %w", err)
	}

	return nil
}

const generatedLogoColumns = `
	id, logo_generation_id, style, variation, prompt_used,
	file_path, file_size, width, height, generation_time_ms, created_at`

func (r *logoRepository) GetLogoByID(ctx context.Context, id uuid.UUID) (*models.GeneratedLogo, error) {
	query := `SELECT ` + generatedLogoColumns + ` FROM generated_logos WHERE id = $1`

	var logo models.GeneratedLogo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&logo.ID, &logo.LogoGenerationID, &logo.Style, &logo.Variation, &logo.PromptUsed,
		&logo.FilePath, &logo.FileSize, &logo.Width, &logo.Height, &logo.GenerationTimeMS, &logo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan generated logo: %w", err)
	}

	return &logo, nil
}

func (r *logoRepository) ListLogosByGeneration(ctx context.Context, generationID uuid.UUID) ([]*models.GeneratedLogo, error) {
	query := `SELECT ` + generatedLogoColumns + `
		FROM generated_logos
		WHERE logo_generation_id = $1
		ORDER BY style ASC, variation ASC`

	rows, err := r.db.Query(ctx, query, generationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generated logos: %w", err)
	}
	defer rows.Close()

	var logos []*models.GeneratedLogo
	for rows.Next() {
		var logo models.GeneratedLogo
		err := rows.Scan(
			&logo.ID, &logo.LogoGenerationID, &logo.Style, &logo.Variation, &logo.PromptUsed,
			&logo.FilePath, &logo.FileSize, &logo.Width, &logo.Height, &logo.GenerationTimeMS, &logo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generated logo: %w", err)
		}
		logos = append(logos, &logo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logos, nil
}

func (r *logoRepository) CreateVariant(ctx context.Context, variant *models.LogoColorVariant) error {
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	if variant.CreatedAt.IsZero() {
		variant.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO logo_color_variants (
			id, generated_logo_id, color_scheme, file_path, file_size, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		variant.ID, variant.GeneratedLogoID, variant.ColorScheme,
		variant.FilePath, variant.FileSize, variant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create color variant: %w", err)
	}

	return nil
}

func (r *logoRepository) GetVariant(ctx context.Context, logoID uuid.UUID, colorScheme string) (*models.LogoColorVariant, error) {
	query := `
		SELECT id, generated_logo_id, color_scheme, file_path, file_size, created_at
		FROM logo_color_variants
		WHERE generated_logo_id = $1 AND color_scheme = $2`

	var variant models.LogoColorVariant
	err := r.db.QueryRow(ctx, query, logoID, colorScheme).Scan(
		&variant.ID, &variant.GeneratedLogoID, &variant.ColorScheme,
		&variant.FilePath, &variant.FileSize, &variant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan color variant: %w", err)
	}

	return &variant, nil
}

func (r *logoRepository) ListVariantsByLogo(ctx context.Context, logoID uuid.UUID) ([]*models.LogoColorVariant, error) {
	query := `
		SELECT id, generated_logo_id, color_scheme, file_path, file_size, created_at
		FROM logo_color_variants
		WHERE generated_logo_id = $1
		ORDER BY color_scheme ASC`

	rows, err := r.db.Query(ctx, query, logoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query color variants: %w", err)
	}
	defer rows.Close()

	var variants []*models.LogoColorVariant
	for rows.Next() {
		var variant models.LogoColorVariant
		err := rows.Scan(
			&variant.ID, &variant.GeneratedLogoID, &variant.ColorScheme,
			&variant.FilePath, &variant.FileSize, &variant.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan color variant: %w", err)
		}
		variants = append(variants, &variant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return variants, nil
}

func scanLogoGenerationRow(row pgx.Row) (*models.LogoGeneration, error) {
	var gen models.LogoGeneration
	var errorMessage *string

	err := row.Scan(
		&gen.ID, &gen.UserID, &gen.SessionID, &gen.BusinessName, &gen.BusinessDescription,
		&gen.Status, &gen.TotalLogosRequested, &gen.LogosCompleted, &gen.CostCents,
		&errorMessage, &gen.CreatedAt, &gen.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan logo generation: %w", err)
	}

	if errorMessage != nil {
		gen.ErrorMessage = *errorMessage
	}

	return &gen, nil
}
