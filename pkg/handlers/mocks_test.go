package handlers

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/services"
)

// newAuthedRequest builds a request carrying the given user's claims,
// bypassing the auth middleware.
func newAuthedRequest(r *http.Request, userID string) *http.Request {
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
	ctx := context.WithValue(r.Context(), auth.ClaimsKey, claims)
	return r.WithContext(ctx)
}

// mockSessionService is a configurable mock for handler tests.
type mockSessionService struct {
	session  *models.GenerationSession
	sessions []*models.GenerationSession
	err      error

	createCalls int
	cancelCalls int
}

func (m *mockSessionService) Create(ctx context.Context, userID string, req services.CreateSessionRequest) (*models.GenerationSession, error) {
	m.createCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessionService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.GenerationSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessionService) List(ctx context.Context, userID string, limit int) ([]*models.GenerationSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions, nil
}

func (m *mockSessionService) Cancel(ctx context.Context, userID string, id uuid.UUID) (*models.GenerationSession, error) {
	m.cancelCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessionService) Run(ctx context.Context, id uuid.UUID) error {
	return m.err
}

// mockLogoService is a configurable mock for handler tests.
type mockLogoService struct {
	generation *models.LogoGeneration
	detail     *services.LogoDetail
	customize  *services.CustomizeResult
	file       []byte
	zipData    []byte
	schemes    []string
	err        error

	customizeReq services.CustomizeRequest
}

func (m *mockLogoService) Create(ctx context.Context, userID string, req services.CreateLogoRequest) (*models.LogoGeneration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.generation, nil
}

func (m *mockLogoService) Get(ctx context.Context, userID string, id uuid.UUID) (*services.LogoDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *mockLogoService) List(ctx context.Context, userID string, limit int) ([]*models.LogoGeneration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*models.LogoGeneration{m.generation}, nil
}

func (m *mockLogoService) Run(ctx context.Context, id uuid.UUID) error {
	return m.err
}

func (m *mockLogoService) Customize(ctx context.Context, userID string, id uuid.UUID, req services.CustomizeRequest) (*services.CustomizeResult, error) {
	m.customizeReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.customize, nil
}

func (m *mockLogoService) GetFile(ctx context.Context, userID string, logoID uuid.UUID, scheme string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.file, nil
}

func (m *mockLogoService) DownloadZip(ctx context.Context, userID string, id uuid.UUID) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.zipData, nil
}

func (m *mockLogoService) ColorSchemes() []string {
	return m.schemes
}

// mockShareService is a configurable mock for handler tests.
type mockShareService struct {
	share   *models.Share
	shares  []*models.Share
	content *services.SharedContent
	err     error

	unlockErr      error
	accessUnlocked bool
}

func (m *mockShareService) Create(ctx context.Context, userID string, req services.CreateShareRequest) (*models.Share, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.share, nil
}

func (m *mockShareService) List(ctx context.Context, userID string) ([]*models.Share, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.shares, nil
}

func (m *mockShareService) Deactivate(ctx context.Context, userID string, id uuid.UUID) error {
	return m.err
}

func (m *mockShareService) Access(ctx context.Context, shareID uuid.UUID, unlocked bool) (*services.SharedContent, error) {
	m.accessUnlocked = unlocked
	if m.err != nil {
		return nil, m.err
	}
	return m.content, nil
}

func (m *mockShareService) Unlock(ctx context.Context, shareID uuid.UUID, password string) error {
	return m.unlockErr
}

// mockExportService is a configurable mock for handler tests.
type mockExportService struct {
	export   *models.Export
	exports  []*models.Export
	download *services.ExportDownload
	err      error
}

func (m *mockExportService) Create(ctx context.Context, userID string, req services.CreateExportRequest) (*models.Export, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.export, nil
}

func (m *mockExportService) List(ctx context.Context, userID string) ([]*models.Export, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.exports, nil
}

func (m *mockExportService) Download(ctx context.Context, userID string, id uuid.UUID) (*services.ExportDownload, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.download, nil
}

func (m *mockExportService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return m.err
}

// mockDomainService is a configurable mock for handler tests.
type mockDomainService struct {
	results map[string]models.TLDAvailability
	err     error
}

func (m *mockDomainService) CheckName(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockDomainService) CheckNames(ctx context.Context, names []string) map[string]map[string]models.TLDAvailability {
	out := make(map[string]map[string]models.TLDAvailability)
	for _, name := range names {
		out[name] = m.results
	}
	return out
}

// mockProjectRepo is a configurable mock for handler tests.
type mockProjectRepo struct {
	project  *models.Project
	projects []*models.Project
	err      error

	created *models.Project
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if m.err != nil {
		return m.err
	}
	project.ID = uuid.New()
	m.created = project
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.projects, nil
}
