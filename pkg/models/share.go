package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareableKind tags the entity a share or export points at. Polymorphic
// references are a (kind, id) pair resolved through an explicit loader
// registry rather than runtime type-string lookup.
type ShareableKind string

const (
	KindGenerationSession ShareableKind = "generation_session"
	KindLogoGeneration    ShareableKind = "logo_generation"
)

// KnownShareableKinds is the set of accepted polymorphic kinds.
var KnownShareableKinds = map[ShareableKind]bool{
	KindGenerationSession: true,
	KindLogoGeneration:    true,
}

// Share types.
const (
	ShareTypePublic            = "public"
	ShareTypePasswordProtected = "password_protected"
)

// Share wraps a result set behind a public UUID with optional access control.
// The view counter is the only mutation permitted after creation, besides
// deactivation.
type Share struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id"`
	ShareableKind ShareableKind `json:"shareable_kind"`
	ShareableID   uuid.UUID     `json:"shareable_id"`
	ShareType     string        `json:"share_type"`
	PasswordHash  string        `json:"-"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
	IsActive      bool          `json:"is_active"`
	ViewCount     int           `json:"view_count"`
	CreatedAt     time.Time     `json:"created_at"`
}

// IsAccessible reports whether the share can serve content as of now:
// active, and either never expiring or expiring strictly in the future.
// A past expiry wins regardless of the active flag.
func (s *Share) IsAccessible(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return false
	}
	return true
}

// RequiresPassword reports whether a password check gates this share.
func (s *Share) RequiresPassword() bool {
	return s.ShareType == ShareTypePasswordProtected
}

// Export formats.
const (
	ExportFormatPDF  = "pdf"
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

// KnownExportFormats is the set of accepted export formats.
var KnownExportFormats = map[string]bool{
	ExportFormatPDF:  true,
	ExportFormatCSV:  true,
	ExportFormatJSON: true,
}

// Export is a rendered file artifact wrapping a result set. Deleting an
// export must delete its backing file as a coupled side effect.
type Export struct {
	ID             uuid.UUID     `json:"id"`
	UserID         string        `json:"user_id"`
	ExportableKind ShareableKind `json:"exportable_kind"`
	ExportableID   uuid.UUID     `json:"exportable_id"`
	Format         string        `json:"format"`
	FilePath       string        `json:"file_path"`
	FileSize       int64         `json:"file_size"`
	ExpiresAt      *time.Time    `json:"expires_at,omitempty"`
	DownloadCount  int           `json:"download_count"`
	CreatedAt      time.Time     `json:"created_at"`
}

// IsExpired reports whether the export's expiry has passed. Callers must
// check this and file existence independently before serving.
func (e *Export) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}
