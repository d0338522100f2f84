package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
)

// fakeSessionRepo implements repositories.SessionRepository in memory.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.GenerationSession

	createErr error
	updateErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.GenerationSession)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.GenerationSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.GenerationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.GenerationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GenerationSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Update(_ context.Context, session *models.GenerationSession) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) UpdateProgress(_ context.Context, id uuid.UUID, percentage int, step string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || session.Status != models.SessionRunning {
		return apperrors.ErrNotFound
	}
	session.ProgressPercentage = percentage
	session.CurrentStep = step
	return nil
}

// fakeCacheRepo implements repositories.CacheRepository in memory.
type fakeCacheRepo struct {
	mu         sync.Mutex
	generation map[string]*models.GenerationCache
	domain     map[string]*models.DomainCheckCache

	generationSaves int
	domainSaves     int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{
		generation: make(map[string]*models.GenerationCache),
		domain:     make(map[string]*models.DomainCheckCache),
	}
}

func (f *fakeCacheRepo) GetGeneration(_ context.Context, contentHash string) (*models.GenerationCache, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation[contentHash], nil
}

func (f *fakeCacheRepo) SaveGeneration(_ context.Context, contentHash string, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generationSaves++
	f.generation[contentHash] = &models.GenerationCache{
		ContentHash: contentHash,
		Names:       names,
		CachedAt:    time.Now(),
	}
	return nil
}

func (f *fakeCacheRepo) GetDomainCheck(_ context.Context, domain string) (*models.DomainCheckCache, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.domain[domain], nil
}

func (f *fakeCacheRepo) SaveDomainCheck(_ context.Context, domain string, results map[string]models.TLDAvailability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domainSaves++
	f.domain[domain] = &models.DomainCheckCache{
		Domain:   domain,
		Results:  results,
		CachedAt: time.Now(),
	}
	return nil
}

// fakeLogoRepo implements repositories.LogoRepository in memory.
type fakeLogoRepo struct {
	mu          sync.Mutex
	generations map[uuid.UUID]*models.LogoGeneration
	logos       map[uuid.UUID]*models.GeneratedLogo
	variants    map[uuid.UUID]*models.LogoColorVariant
}

func newFakeLogoRepo() *fakeLogoRepo {
	return &fakeLogoRepo{
		generations: make(map[uuid.UUID]*models.LogoGeneration),
		logos:       make(map[uuid.UUID]*models.GeneratedLogo),
		variants:    make(map[uuid.UUID]*models.LogoColorVariant),
	}
}

func (f *fakeLogoRepo) CreateGeneration(_ context.Context, gen *models.LogoGeneration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *gen
	f.generations[gen.ID] = &copied
	return nil
}

func (f *fakeLogoRepo) GetGenerationByID(_ context.Context, id uuid.UUID) (*models.LogoGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.generations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *gen
	return &copied, nil
}

func (f *fakeLogoRepo) ListGenerationsByUser(_ context.Context, userID string, limit int) ([]*models.LogoGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LogoGeneration
	for _, g := range f.generations {
		if g.UserID == userID {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLogoRepo) UpdateGenerationStatus(_ context.Context, gen *models.LogoGeneration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.generations[gen.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Status = gen.Status
	stored.CostCents = gen.CostCents
	stored.ErrorMessage = gen.ErrorMessage
	stored.CompletedAt = gen.CompletedAt
	return nil
}

func (f *fakeLogoRepo) IncrementCompleted(_ context.Context, generationID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.generations[generationID]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	gen.LogosCompleted++
	return gen.LogosCompleted, nil
}

func (f *fakeLogoRepo) CreateLogo(_ context.Context, logo *models.GeneratedLogo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if logo.ID == uuid.Nil {
		logo.ID = uuid.New()
	}
	copied := *logo
	f.logos[logo.ID] = &copied
	return nil
}

func (f *fakeLogoRepo) GetLogoByID(_ context.Context, id uuid.UUID) (*models.GeneratedLogo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	logo, ok := f.logos[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *logo
	return &copied, nil
}

func (f *fakeLogoRepo) ListLogosByGeneration(_ context.Context, generationID uuid.UUID) ([]*models.GeneratedLogo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GeneratedLogo
	for _, l := range f.logos {
		if l.LogoGenerationID == generationID {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLogoRepo) CreateVariant(_ context.Context, variant *models.LogoColorVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.variants {
		if v.GeneratedLogoID == variant.GeneratedLogoID && v.ColorScheme == variant.ColorScheme {
			return apperrors.ErrStorage
		}
	}
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	copied := *variant
	f.variants[variant.ID] = &copied
	return nil
}

func (f *fakeLogoRepo) GetVariant(_ context.Context, logoID uuid.UUID, colorScheme string) (*models.LogoColorVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.variants {
		if v.GeneratedLogoID == logoID && v.ColorScheme == colorScheme {
			copied := *v
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeLogoRepo) ListVariantsByLogo(_ context.Context, logoID uuid.UUID) ([]*models.LogoColorVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LogoColorVariant
	for _, v := range f.variants {
		if v.GeneratedLogoID == logoID {
			copied := *v
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeShareRepo implements repositories.ShareRepository in memory.
type fakeShareRepo struct {
	mu     sync.Mutex
	shares map[uuid.UUID]*models.Share
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: make(map[uuid.UUID]*models.Share)}
}

func (f *fakeShareRepo) Create(_ context.Context, share *models.Share) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	copied := *share
	f.shares[share.ID] = &copied
	return nil
}

func (f *fakeShareRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	share, ok := f.shares[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *share
	return &copied, nil
}

func (f *fakeShareRepo) ListByUser(_ context.Context, userID string) ([]*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Share
	for _, s := range f.shares {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeShareRepo) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	share, ok := f.shares[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	share.ViewCount++
	return nil
}

func (f *fakeShareRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	share, ok := f.shares[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	share.IsActive = false
	return nil
}

// fakeExportRepo implements repositories.ExportRepository in memory.
type fakeExportRepo struct {
	mu      sync.Mutex
	exports map[uuid.UUID]*models.Export
}

func newFakeExportRepo() *fakeExportRepo {
	return &fakeExportRepo{exports: make(map[uuid.UUID]*models.Export)}
}

func (f *fakeExportRepo) Create(_ context.Context, export *models.Export) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}
	copied := *export
	f.exports[export.ID] = &copied
	return nil
}

func (f *fakeExportRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Export, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	export, ok := f.exports[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *export
	return &copied, nil
}

func (f *fakeExportRepo) ListByUser(_ context.Context, userID string) ([]*models.Export, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Export
	for _, e := range f.exports {
		if e.UserID == userID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeExportRepo) IncrementDownloadCount(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	export, ok := f.exports[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	export.DownloadCount++
	return nil
}

func (f *fakeExportRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exports[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.exports, id)
	return nil
}

// fakeStore implements storage.Store in memory.
type fakeStore struct {
	mu    sync.Mutex
	files map[string][]byte

	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (f *fakeStore) Put(key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeStore) Exists(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[key]
	return ok
}

func (f *fakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	return nil
}
