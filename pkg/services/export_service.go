package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
	"github.com/namerhq/namer-engine/pkg/storage"
)

// CreateExportRequest renders a result set into a downloadable file.
type CreateExportRequest struct {
	Kind   models.ShareableKind `json:"exportable_kind"`
	ID     uuid.UUID            `json:"exportable_id"`
	Format string               `json:"format"`
}

// ExportDownload is the served file with its metadata.
type ExportDownload struct {
	Export      *models.Export
	Data        []byte
	ContentType string
	Filename    string
}

// exportExpiry is how long an export file remains downloadable.
const exportExpiry = 7 * 24 * time.Hour

// ExportService renders, serves, and deletes export artifacts. Deleting an
// export removes both the row and its backing file.
type ExportService interface {
	Create(ctx context.Context, userID string, req CreateExportRequest) (*models.Export, error)
	List(ctx context.Context, userID string) ([]*models.Export, error)
	// Download serves the rendered file and bumps the download counter.
	// Expired exports and exports whose file has gone missing are both
	// rejected, each checked independently.
	Download(ctx context.Context, userID string, id uuid.UUID) (*ExportDownload, error)
	// Delete removes the export row and its file as a coupled pair.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type exportService struct {
	exportRepo  repositories.ExportRepository
	sessionRepo repositories.SessionRepository
	logoRepo    repositories.LogoRepository
	store       storage.Store
	logger      *zap.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(
	exportRepo repositories.ExportRepository,
	sessionRepo repositories.SessionRepository,
	logoRepo repositories.LogoRepository,
	store storage.Store,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		exportRepo:  exportRepo,
		sessionRepo: sessionRepo,
		logoRepo:    logoRepo,
		store:       store,
		logger:      logger.Named("export-service"),
	}
}

var _ ExportService = (*exportService)(nil)

func (s *exportService) Create(ctx context.Context, userID string, req CreateExportRequest) (*models.Export, error) {
	if !models.KnownShareableKinds[req.Kind] {
		return nil, apperrors.NewValidationError("exportable_kind", fmt.Sprintf("unknown kind %q", req.Kind))
	}
	if !models.KnownExportFormats[req.Format] {
		return nil, apperrors.NewValidationError("format", fmt.Sprintf("unknown format %q", req.Format))
	}

	data, err := s.render(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	expires := time.Now().Add(exportExpiry)
	export := &models.Export{
		UserID:         userID,
		ExportableKind: req.Kind,
		ExportableID:   req.ID,
		Format:         req.Format,
		FileSize:       int64(len(data)),
		ExpiresAt:      &expires,
	}
	export.ID = uuid.New()
	export.FilePath = fmt.Sprintf("exports/%s/%s.%s", userID, export.ID, req.Format)

	if err := s.store.Put(export.FilePath, data); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if err := s.exportRepo.Create(ctx, export); err != nil {
		// Orphaned file cleanup on a failed row insert
		_ = s.store.Delete(export.FilePath)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	s.logger.Info("export created",
		zap.String("export_id", export.ID.String()),
		zap.String("format", req.Format),
		zap.Int64("file_size", export.FileSize))

	return export, nil
}

func (s *exportService) List(ctx context.Context, userID string) ([]*models.Export, error) {
	return s.exportRepo.ListByUser(ctx, userID)
}

func (s *exportService) Download(ctx context.Context, userID string, id uuid.UUID) (*ExportDownload, error) {
	export, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if export.IsExpired(time.Now()) {
		return nil, apperrors.ErrShareInaccessible
	}
	if !s.store.Exists(export.FilePath) {
		return nil, apperrors.ErrNotFound
	}

	data, err := s.store.Get(export.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	if err := s.exportRepo.IncrementDownloadCount(ctx, id); err != nil {
		s.logger.Warn("download count increment failed",
			zap.String("export_id", id.String()),
			zap.Error(err))
	}
	export.DownloadCount++

	return &ExportDownload{
		Export:      export,
		Data:        data,
		ContentType: exportContentType(export.Format),
		Filename:    fmt.Sprintf("namer-export-%s.%s", export.ID.String()[:8], export.Format),
	}, nil
}

func (s *exportService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	export, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.exportRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(export.FilePath); err != nil {
		// Row is gone; a stray file is logged, not surfaced.
		s.logger.Warn("export file delete failed",
			zap.String("export_id", id.String()),
			zap.String("path", export.FilePath),
			zap.Error(err))
	}

	s.logger.Info("export deleted", zap.String("export_id", id.String()))
	return nil
}

func (s *exportService) getOwned(ctx context.Context, userID string, id uuid.UUID) (*models.Export, error) {
	export, err := s.exportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if export.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return export, nil
}

func exportContentType(format string) string {
	switch format {
	case models.ExportFormatCSV:
		return "text/csv"
	case models.ExportFormatJSON:
		return "application/json"
	case models.ExportFormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (s *exportService) render(ctx context.Context, userID string, req CreateExportRequest) ([]byte, error) {
	switch req.Kind {
	case models.KindGenerationSession:
		session, err := s.sessionRepo.GetByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if session.UserID != userID {
			return nil, apperrors.ErrForbidden
		}
		if session.Results == nil {
			return nil, apperrors.NewValidationError("exportable_id", "session has no results to export")
		}
		return renderSessionExport(session, req.Format)

	case models.KindLogoGeneration:
		gen, err := s.logoRepo.GetGenerationByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if gen.UserID != userID {
			return nil, apperrors.ErrForbidden
		}
		logos, err := s.logoRepo.ListLogosByGeneration(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		return renderLogoExport(gen, logos, req.Format)
	}
	return nil, apperrors.NewValidationError("exportable_kind", "unsupported kind")
}

func renderSessionExport(session *models.GenerationSession, format string) ([]byte, error) {
	switch format {
	case models.ExportFormatJSON:
		return json.MarshalIndent(session, "", "  ")

	case models.ExportFormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		header := []string{"name", "source"}
		tlds := sessionTLDs(session)
		header = append(header, tlds...)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		for _, name := range session.Results.Names {
			row := []string{name, session.Results.Source}
			for _, tld := range tlds {
				row = append(row, domainCell(session, name, tld))
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()

	case models.ExportFormatPDF:
		lines := make([]string, 0, len(session.Results.Names)+2)
		lines = append(lines, fmt.Sprintf("Mode: %s   Source: %s", session.GenerationMode, session.Results.Source), "")
		for i, name := range session.Results.Names {
			lines = append(lines, fmt.Sprintf("%2d. %s", i+1, name))
		}
		return renderSimplePDF("Generated Business Names", lines), nil
	}
	return nil, apperrors.NewValidationError("format", "unsupported format")
}

func renderLogoExport(gen *models.LogoGeneration, logos []*models.GeneratedLogo, format string) ([]byte, error) {
	switch format {
	case models.ExportFormatJSON:
		return json.MarshalIndent(struct {
			Generation *models.LogoGeneration  `json:"generation"`
			Logos      []*models.GeneratedLogo `json:"logos"`
		}{gen, logos}, "", "  ")

	case models.ExportFormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"style", "variation", "file_path", "file_size", "generation_time_ms"}); err != nil {
			return nil, err
		}
		for _, logo := range logos {
			row := []string{
				logo.Style,
				fmt.Sprintf("%d", logo.Variation),
				logo.FilePath,
				fmt.Sprintf("%d", logo.FileSize),
				fmt.Sprintf("%d", logo.GenerationTimeMS),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()

	case models.ExportFormatPDF:
		lines := []string{
			fmt.Sprintf("Business: %s", gen.BusinessName),
			fmt.Sprintf("Status: %s   Logos: %d/%d", gen.Status, gen.LogosCompleted, gen.TotalLogosRequested),
			"",
		}
		for _, logo := range logos {
			lines = append(lines, fmt.Sprintf("%s #%d  (%s)", logo.Style, logo.Variation, logo.FilePath))
		}
		return renderSimplePDF("Logo Generation Summary", lines), nil
	}
	return nil, apperrors.NewValidationError("format", "unsupported format")
}

// sessionTLDs returns the sorted TLD set present in the session's domain
// results, so CSV columns are stable.
func sessionTLDs(session *models.GenerationSession) []string {
	set := make(map[string]bool)
	for _, byTLD := range session.Results.Domains {
		for tld := range byTLD {
			set[tld] = true
		}
	}
	tlds := make([]string, 0, len(set))
	for tld := range set {
		tlds = append(tlds, tld)
	}
	sort.Strings(tlds)
	return tlds
}

func domainCell(session *models.GenerationSession, name, tld string) string {
	byTLD, ok := session.Results.Domains[name]
	if !ok {
		return ""
	}
	avail, ok := byTLD[tld]
	if !ok {
		return ""
	}
	if avail.Available {
		return "available"
	}
	return "taken"
}
