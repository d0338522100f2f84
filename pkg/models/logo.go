package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/namerhq/namer-engine/pkg/apperrors"
)

// LogoStatus is the lifecycle state of a logo generation request.
type LogoStatus string

const (
	LogoPending    LogoStatus = "pending"
	LogoProcessing LogoStatus = "processing"
	LogoCompleted  LogoStatus = "completed"
	LogoFailed     LogoStatus = "failed"
)

// Logo styles rendered for every business name.
var LogoStyles = []string{"minimalist", "modern", "playful", "classic"}

// VariationsPerStyle is how many variations the render job produces per style.
const VariationsPerStyle = 3

// LogoGeneration is one batch request for style x variation logo images.
// The render job increments LogosCompleted atomically as each image lands;
// completion and failure are mutually exclusive terminal states, and logos
// produced before a failure remain visible.
type LogoGeneration struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              string     `json:"user_id"`
	SessionID           *uuid.UUID `json:"session_id,omitempty"`
	BusinessName        string     `json:"business_name"`
	BusinessDescription string     `json:"business_description"`
	Status              LogoStatus `json:"status"`
	TotalLogosRequested int        `json:"total_logos_requested"`
	LogosCompleted      int        `json:"logos_completed"`
	CostCents           int        `json:"cost_cents"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// NewLogoGeneration creates a pending request sized at the fixed policy of
// four styles by three variations.
func NewLogoGeneration(userID string, sessionID *uuid.UUID, name, description string) *LogoGeneration {
	return &LogoGeneration{
		ID:                  uuid.New(),
		UserID:              userID,
		SessionID:           sessionID,
		BusinessName:        name,
		BusinessDescription: description,
		Status:              LogoPending,
		TotalLogosRequested: len(LogoStyles) * VariationsPerStyle,
		CreatedAt:           time.Now(),
	}
}

// IsTerminal reports whether the generation reached a terminal state.
func (g *LogoGeneration) IsTerminal() bool {
	return g.Status == LogoCompleted || g.Status == LogoFailed
}

// MarkProcessing transitions pending -> processing.
func (g *LogoGeneration) MarkProcessing() error {
	if g.Status != LogoPending {
		return apperrors.ErrInvalidTransition
	}
	g.Status = LogoProcessing
	return nil
}

// GeneratedLogo is one rendered image belonging to a LogoGeneration.
type GeneratedLogo struct {
	ID               uuid.UUID `json:"id"`
	LogoGenerationID uuid.UUID `json:"logo_generation_id"`
	Style            string    `json:"style"`
	Variation        int       `json:"variation"`
	PromptUsed       string    `json:"prompt_used"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	GenerationTimeMS int64     `json:"generation_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// LogoColorVariant is a palette-recolored derivative of a GeneratedLogo.
// At most one variant exists per (logo, color scheme) pair; re-requesting an
// existing combination returns the existing variant unchanged.
type LogoColorVariant struct {
	ID              uuid.UUID `json:"id"`
	GeneratedLogoID uuid.UUID `json:"generated_logo_id"`
	ColorScheme     string    `json:"color_scheme"`
	FilePath        string    `json:"file_path"`
	FileSize        int64     `json:"file_size"`
	CreatedAt       time.Time `json:"created_at"`
}
