// Package models contains domain types for namer-engine.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/namerhq/namer-engine/pkg/apperrors"
)

// SessionStatus is the lifecycle state of a generation session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// Generation modes shape the naming prompt.
const (
	ModeCreative     = "creative"
	ModeProfessional = "professional"
	ModeBrandable    = "brandable"
	ModeTechFocused  = "tech-focused"
)

// KnownModes is the set of accepted generation modes.
var KnownModes = map[string]bool{
	ModeCreative:     true,
	ModeProfessional: true,
	ModeBrandable:    true,
	ModeTechFocused:  true,
}

// Result sources distinguish provider output from the local fallback.
const (
	ResultSourceAI       = "ai"
	ResultSourceFallback = "fallback"
)

// StrategyParallel records that requested models ran concurrently.
const StrategyParallel = "parallel"

// ModelResult is the per-model outcome of one dispatch.
type ModelResult struct {
	Names          []string `json:"names,omitempty"`
	Error          string   `json:"error,omitempty"`
	ResponseTimeMS int64    `json:"response_time_ms"`
	TokensUsed     int      `json:"tokens_used"`
}

// TLDAvailability is the availability of one name under one TLD.
type TLDAvailability struct {
	Available bool   `json:"available"`
	Price     string `json:"price,omitempty"`
}

// SessionResults is the results payload of a completed session.
type SessionResults struct {
	Names        []string                              `json:"names"`
	Source       string                                `json:"source"` // "ai" or "fallback"
	ModelResults map[string]ModelResult                `json:"model_results,omitempty"`
	Domains      map[string]map[string]TLDAvailability `json:"domains,omitempty"`
}

// ExecutionMetadata captures aggregate dispatch statistics.
type ExecutionMetadata struct {
	TotalTimeMS int64    `json:"total_time_ms"`
	ModelsUsed  []string `json:"models_used"`
	Strategy    string   `json:"generation_strategy"`
	CacheHit    bool     `json:"cache_hit,omitempty"`
}

// GenerationSession tracks one multi-model name-generation request end-to-end.
// It is created pending and mutated only through the Mark* transitions; the
// results payload is populated if and only if the session completed, and the
// error message if and only if it failed.
type GenerationSession struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`

	Status              SessionStatus      `json:"status"`
	BusinessDescription string             `json:"business_description"`
	GenerationMode      string             `json:"generation_mode"`
	DeepThinking        bool               `json:"deep_thinking"`
	RequestedModels     []string           `json:"requested_models"`
	ProgressPercentage  int                `json:"progress_percentage"`
	CurrentStep         string             `json:"current_step"`
	Results             *SessionResults    `json:"results,omitempty"`
	Metadata            *ExecutionMetadata `json:"execution_metadata,omitempty"`
	ErrorMessage        string             `json:"error_message,omitempty"`

	TotalNamesGenerated int   `json:"total_names_generated"`
	TotalResponseTimeMS int64 `json:"total_response_time_ms"`
	TotalTokensUsed     int   `json:"total_tokens_used"`
	TotalCostCents      int   `json:"total_cost_cents"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewGenerationSession creates a pending session with zero progress.
func NewGenerationSession(userID string, projectID *uuid.UUID, description, mode string, deepThinking bool, models []string) *GenerationSession {
	return &GenerationSession{
		ID:                  uuid.New(),
		UserID:              userID,
		ProjectID:           projectID,
		Status:              SessionPending,
		BusinessDescription: description,
		GenerationMode:      mode,
		DeepThinking:        deepThinking,
		RequestedModels:     models,
		ProgressPercentage:  0,
		CreatedAt:           time.Now(),
	}
}

// IsTerminal reports whether the session reached a terminal state.
func (s *GenerationSession) IsTerminal() bool {
	switch s.Status {
	case SessionCompleted, SessionFailed, SessionCancelled:
		return true
	}
	return false
}

// MarkStarted transitions pending -> running. Any other starting state is
// rejected with ErrInvalidTransition.
func (s *GenerationSession) MarkStarted() error {
	if s.Status != SessionPending {
		return apperrors.ErrInvalidTransition
	}
	now := time.Now()
	s.Status = SessionRunning
	s.StartedAt = &now
	s.ProgressPercentage = 5
	s.CurrentStep = "Initializing..."
	return nil
}

// UpdateProgress clamps pct to [0,100] and never lets progress decrease
// while the session is live. Terminal sessions reject updates.
func (s *GenerationSession) UpdateProgress(pct int, step string) error {
	if s.IsTerminal() {
		return apperrors.ErrInvalidTransition
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct > s.ProgressPercentage {
		s.ProgressPercentage = pct
	}
	if step != "" {
		s.CurrentStep = step
	}
	return nil
}

// MarkCompleted transitions running -> completed and stores the results
// payload. Calling it on an already-terminal session is rejected rather than
// silently overwriting.
func (s *GenerationSession) MarkCompleted(results *SessionResults, metadata *ExecutionMetadata) error {
	if s.Status != SessionRunning {
		return apperrors.ErrInvalidTransition
	}
	now := time.Now()
	s.Status = SessionCompleted
	s.ProgressPercentage = 100
	s.CurrentStep = "Generation completed successfully"
	s.Results = results
	s.Metadata = metadata
	s.CompletedAt = &now
	if results != nil {
		s.TotalNamesGenerated = len(results.Names)
	}
	return nil
}

// MarkFailed transitions running -> failed and stores the error message.
func (s *GenerationSession) MarkFailed(message string) error {
	if s.Status != SessionRunning {
		return apperrors.ErrInvalidTransition
	}
	now := time.Now()
	s.Status = SessionFailed
	s.CurrentStep = "Generation failed"
	s.ErrorMessage = message
	s.CompletedAt = &now
	return nil
}

// MarkCancelled transitions pending or running -> cancelled. Cancelling a
// terminal session returns ErrCannotCancel, surfaced to callers as a 422.
func (s *GenerationSession) MarkCancelled() error {
	if s.Status != SessionPending && s.Status != SessionRunning {
		return apperrors.ErrCannotCancel
	}
	now := time.Now()
	s.Status = SessionCancelled
	s.CurrentStep = "Generation cancelled"
	s.CompletedAt = &now
	return nil
}
