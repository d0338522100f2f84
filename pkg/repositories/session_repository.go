// Package repositories provides PostgreSQL data access for namer-engine.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/database"
	"github.com/namerhq/namer-engine/pkg/models"
)

// SessionRepository provides data access for generation sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.GenerationSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationSession, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.GenerationSession, error)
	// Update persists the mutable session fields: status, progress, results,
	// metadata, metrics, error message, and timestamps.
	Update(ctx context.Context, session *models.GenerationSession) error
	// UpdateProgress persists only the progress fields for a running session.
	UpdateProgress(ctx context.Context, id uuid.UUID, percentage int, step string) error
}

type sessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *database.DB) SessionRepository {
	return &sessionRepository{db: db}
}

var _ SessionRepository = (*sessionRepository)(nil)

const sessionColumns = `
	id, user_id, project_id, status, business_description, generation_mode,
	deep_thinking, requested_models, progress_percentage, current_step,
	results, execution_metadata, error_message,
	total_names_generated, total_response_time_ms, total_tokens_used, total_cost_cents,
	created_at, started_at, completed_at`

func (r *sessionRepository) Create(ctx context.Context, session *models.GenerationSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	modelsJSON, err := json.Marshal(session.RequestedModels)
	if err != nil {
		return fmt.Errorf("failed to marshal requested_models: %w", err)
	}

	query := `
		INSERT INTO generation_sessions (
			id, user_id, project_id, status, business_description, generation_mode,
			deep_thinking, requested_models, progress_percentage, current_step, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		session.ID, session.UserID, session.ProjectID, session.Status,
		session.BusinessDescription, session.GenerationMode,
		session.DeepThinking, modelsJSON,
		session.ProgressPercentage, session.CurrentStep, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create generation session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM generation_sessions WHERE id = $1`

	session, err := scanSessionRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.GenerationSession, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + sessionColumns + `
		FROM generation_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.GenerationSession
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.GenerationSession) error {
	var resultsJSON, metadataJSON []byte
	var err error
	if session.Results != nil {
		resultsJSON, err = json.Marshal(session.Results)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
	}
	if session.Metadata != nil {
		metadataJSON, err = json.Marshal(session.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal execution_metadata: %w", err)
		}
	}

	var errorMessage *string
	if session.ErrorMessage != "" {
		errorMessage = &session.ErrorMessage
	}

	query := `
		UPDATE generation_sessions
		SET status = $2,
		    progress_percentage = $3,
		    current_step = $4,
		    results = $5,
		    execution_metadata = $6,
		    error_message = $7,
		    total_names_generated = $8,
		    total_response_time_ms = $9,
		    total_tokens_used = $10,
		    total_cost_cents = $11,
		    started_at = $12,
		    completed_at = $13
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		session.ID, session.Status,
		session.ProgressPercentage, session.CurrentStep,
		resultsJSON, metadataJSON, errorMessage,
		session.TotalNamesGenerated, session.TotalResponseTimeMS,
		session.TotalTokensUsed, session.TotalCostCents,
		session.StartedAt, session.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update generation session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *sessionRepository) UpdateProgress(ctx context.Context, id uuid.UUID, percentage int, step string) error {
	query := `
		UPDATE generation_sessions
		SET progress_percentage = $2, current_step = $3
		WHERE id = $1 AND status = 'running'`

	result, err := r.db.Exec(ctx, query, id, percentage, step)
	if err != nil {
		return fmt.Errorf("failed to update session progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanSessionRow(row pgx.Row) (*models.GenerationSession, error) {
	var session models.GenerationSession
	var modelsJSON, resultsJSON, metadataJSON []byte
	var currentStep, errorMessage *string

	err := row.Scan(
		&session.ID, &session.UserID, &session.ProjectID, &session.Status,
		&session.BusinessDescription, &session.GenerationMode,
		&session.DeepThinking, &modelsJSON,
		&session.ProgressPercentage, &currentStep,
		&resultsJSON, &metadataJSON, &errorMessage,
		&session.TotalNamesGenerated, &session.TotalResponseTimeMS,
		&session.TotalTokensUsed, &session.TotalCostCents,
		&session.CreatedAt, &session.StartedAt, &session.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if currentStep != nil {
		session.CurrentStep = *currentStep
	}
	if errorMessage != nil {
		session.ErrorMessage = *errorMessage
	}
	if len(modelsJSON) > 0 {
		if err := json.Unmarshal(modelsJSON, &session.RequestedModels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal requested_models: %w", err)
		}
	}
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &session.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &session.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution_metadata: %w", err)
		}
	}

	return &session, nil
}
