package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
)

type exportFixture struct {
	svc        ExportService
	exportRepo *fakeExportRepo
	store      *fakeStore
	session    *models.GenerationSession
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()

	sessionRepo := newFakeSessionRepo()
	session := models.NewGenerationSession("owner", nil, "a coffee shop for night owls", models.ModeBrandable, false, []string{"mock-a"})
	require.NoError(t, session.MarkStarted())
	require.NoError(t, session.MarkCompleted(&models.SessionResults{
		Names:  []string{"Brewline", "Nightcap"},
		Source: models.ResultSourceAI,
		Domains: map[string]map[string]models.TLDAvailability{
			"Brewline": {
				"com": {Available: true},
				"io":  {Available: false},
			},
		},
	}, nil))
	require.NoError(t, sessionRepo.Create(context.Background(), session))

	exportRepo := newFakeExportRepo()
	store := newFakeStore()
	svc := NewExportService(exportRepo, sessionRepo, newFakeLogoRepo(), store, zap.NewNop())
	return &exportFixture{svc: svc, exportRepo: exportRepo, store: store, session: session}
}

func TestExportServiceCreateValidation(t *testing.T) {
	f := newExportFixture(t)

	var verr *apperrors.ValidationError

	_, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: "bookmark", ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: "xlsx",
	})
	require.ErrorAs(t, err, &verr)
}

func TestExportServiceCreateJSON(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.NoError(t, err)

	assert.True(t, f.store.Exists(export.FilePath))
	assert.Positive(t, export.FileSize)
	require.NotNil(t, export.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(exportExpiry), *export.ExpiresAt, time.Minute)

	data, err := f.store.Get(export.FilePath)
	require.NoError(t, err)

	var decoded models.GenerationSession
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, f.session.ID, decoded.ID)
	assert.Equal(t, []string{"Brewline", "Nightcap"}, decoded.Results.Names)
}

func TestExportServiceCreateCSVIncludesDomainColumns(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)

	data, err := f.store.Get(export.FilePath)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"name", "source", "com", "io"}, rows[0])
	assert.Equal(t, []string{"Brewline", "ai", "available", "taken"}, rows[1])
	// Names without a lookup get empty availability cells.
	assert.Equal(t, []string{"Nightcap", "ai", "", ""}, rows[2])
}

func TestExportServiceCreatePDF(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatPDF,
	})
	require.NoError(t, err)

	data, err := f.store.Get(export.FilePath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4")))
	assert.Contains(t, string(data), "Brewline")
}

func TestExportServiceCreateRequiresResults(t *testing.T) {
	f := newExportFixture(t)

	sessionRepo := newFakeSessionRepo()
	pending := models.NewGenerationSession("owner", nil, "a coffee shop for night owls", models.ModeBrandable, false, []string{"mock-a"})
	require.NoError(t, sessionRepo.Create(context.Background(), pending))
	svc := NewExportService(f.exportRepo, sessionRepo, newFakeLogoRepo(), f.store, zap.NewNop())

	var verr *apperrors.ValidationError
	_, err := svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: pending.ID, Format: models.ExportFormatJSON,
	})
	require.ErrorAs(t, err, &verr)
}

func TestExportServiceCreateEnforcesOwnership(t *testing.T) {
	f := newExportFixture(t)

	_, err := f.svc.Create(context.Background(), "intruder", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestExportServiceCreateLogoExport(t *testing.T) {
	f := newExportFixture(t)

	logoRepo := newFakeLogoRepo()
	gen := models.NewLogoGeneration("owner", nil, "Brewline", "a coffee shop for night owls")
	require.NoError(t, logoRepo.CreateGeneration(context.Background(), gen))
	require.NoError(t, logoRepo.CreateLogo(context.Background(), &models.GeneratedLogo{
		LogoGenerationID: gen.ID,
		Style:            "minimalist",
		Variation:        1,
		FilePath:         "logos/x/minimalist-1.svg",
		FileSize:         128,
	}))

	svc := NewExportService(f.exportRepo, newFakeSessionRepo(), logoRepo, f.store, zap.NewNop())

	export, err := svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindLogoGeneration, ID: gen.ID, Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)

	data, err := f.store.Get(export.FilePath)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "minimalist", rows[1][0])
}

func TestExportServiceCreateCleansUpOrphanedFile(t *testing.T) {
	f := newExportFixture(t)

	sessionRepo := newFakeSessionRepo()
	require.NoError(t, sessionRepo.Create(context.Background(), f.session))

	exportRepo := newFakeExportRepo()
	store := newFakeStore()
	svc := NewExportService(&failingExportRepo{fakeExportRepo: exportRepo}, sessionRepo, newFakeLogoRepo(), store, zap.NewNop())

	_, err := svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.Error(t, err)
	assert.Empty(t, store.files)
}

// failingExportRepo rejects row inserts to exercise file cleanup.
type failingExportRepo struct {
	*fakeExportRepo
}

func (f *failingExportRepo) Create(ctx context.Context, export *models.Export) error {
	return apperrors.ErrStorage
}

func TestExportServiceDownload(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.NoError(t, err)

	download, err := f.svc.Download(context.Background(), "owner", export.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/json", download.ContentType)
	assert.NotEmpty(t, download.Data)
	assert.Equal(t, 1, download.Export.DownloadCount)

	stored, err := f.exportRepo.GetByID(context.Background(), export.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DownloadCount)

	_, err = f.svc.Download(context.Background(), "intruder", export.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestExportServiceDownloadExpired(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	f.exportRepo.exports[export.ID].ExpiresAt = &past

	_, err = f.svc.Download(context.Background(), "owner", export.ID)
	assert.ErrorIs(t, err, apperrors.ErrShareInaccessible)
}

func TestExportServiceDownloadMissingFile(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.NoError(t, err)

	require.NoError(t, f.store.Delete(export.FilePath))

	_, err = f.svc.Download(context.Background(), "owner", export.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestExportServiceDeleteRemovesRowAndFile(t *testing.T) {
	f := newExportFixture(t)

	export, err := f.svc.Create(context.Background(), "owner", CreateExportRequest{
		Kind: models.KindGenerationSession, ID: f.session.ID, Format: models.ExportFormatJSON,
	})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), "intruder", export.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.Delete(context.Background(), "owner", export.ID))

	_, err = f.exportRepo.GetByID(context.Background(), export.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, f.store.Exists(export.FilePath))

	err = f.svc.Delete(context.Background(), "owner", uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
