package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/domains"
	"github.com/namerhq/namer-engine/pkg/imagen"
	"github.com/namerhq/namer-engine/pkg/llm"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
	"github.com/namerhq/namer-engine/pkg/storage"
	"github.com/namerhq/namer-engine/pkg/svgcolor"
)

// CreateLogoRequest starts a logo batch for a business name.
type CreateLogoRequest struct {
	BusinessName        string     `json:"business_name"`
	BusinessDescription string     `json:"business_description"`
	SessionID           *uuid.UUID `json:"session_id,omitempty"`
}

// CustomizeRequest asks for palette variants of every logo in a batch.
type CustomizeRequest struct {
	ColorSchemes []string `json:"color_schemes"`
}

// CustomizeResult summarizes a customize run. Existing variants are
// returned as-is; new ones are rendered; individual failures are skipped
// and counted.
type CustomizeResult struct {
	Variants []*models.LogoColorVariant `json:"variants"`
	Created  int                        `json:"created"`
	Existing int                        `json:"existing"`
	Failed   int                        `json:"failed"`
}

// LogoDetail is a generation with its rendered logos and variants.
type LogoDetail struct {
	Generation *models.LogoGeneration     `json:"generation"`
	Logos      []*models.GeneratedLogo    `json:"logos"`
	Variants   []*models.LogoColorVariant `json:"variants,omitempty"`
}

// LogoService manages the logo pipeline: batch rendering, palette
// customization, file serving, and ZIP assembly.
type LogoService interface {
	Create(ctx context.Context, userID string, req CreateLogoRequest) (*models.LogoGeneration, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*LogoDetail, error)
	List(ctx context.Context, userID string, limit int) ([]*models.LogoGeneration, error)
	// Run renders the full style x variation batch. Called from a
	// background task.
	Run(ctx context.Context, id uuid.UUID) error
	// Customize renders palette variants for every logo in the batch.
	// Re-requesting an existing (logo, scheme) pair is idempotent.
	Customize(ctx context.Context, userID string, id uuid.UUID, req CustomizeRequest) (*CustomizeResult, error)
	// GetFile returns the SVG bytes of one logo, or of its variant when
	// scheme is non-empty.
	GetFile(ctx context.Context, userID string, logoID uuid.UUID, scheme string) ([]byte, error)
	// DownloadZip assembles every logo and variant of the batch into a
	// ZIP archive with deterministic entry names.
	DownloadZip(ctx context.Context, userID string, id uuid.UUID) ([]byte, error)
	// ColorSchemes lists the available palette names.
	ColorSchemes() []string
}

type logoService struct {
	logoRepo  repositories.LogoRepository
	imageGen  imagen.Client
	recolorer *svgcolor.Processor
	store     storage.Store
	pool      *llm.WorkerPool
	logger    *zap.Logger
}

// NewLogoService creates a new LogoService.
func NewLogoService(
	logoRepo repositories.LogoRepository,
	imageGen imagen.Client,
	recolorer *svgcolor.Processor,
	store storage.Store,
	pool *llm.WorkerPool,
	logger *zap.Logger,
) LogoService {
	return &logoService{
		logoRepo:  logoRepo,
		imageGen:  imageGen,
		recolorer: recolorer,
		store:     store,
		pool:      pool,
		logger:    logger.Named("logo-service"),
	}
}

var _ LogoService = (*logoService)(nil)

// costPerImageCents is the bookkeeping cost of a single rendered image.
const costPerImageCents = 4

func (s *logoService) Create(ctx context.Context, userID string, req CreateLogoRequest) (*models.LogoGeneration, error) {
	fields := make(map[string]string)
	if req.BusinessName == "" {
		fields["business_name"] = "is required"
	}
	if req.BusinessDescription == "" {
		fields["business_description"] = "is required"
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	gen := models.NewLogoGeneration(userID, req.SessionID, req.BusinessName, req.BusinessDescription)
	if err := s.logoRepo.CreateGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	s.logger.Info("logo generation created",
		zap.String("generation_id", gen.ID.String()),
		zap.String("business_name", gen.BusinessName),
		zap.Int("total_logos", gen.TotalLogosRequested))

	return gen, nil
}

func (s *logoService) Get(ctx context.Context, userID string, id uuid.UUID) (*LogoDetail, error) {
	gen, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	logos, err := s.logoRepo.ListLogosByGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	var variants []*models.LogoColorVariant
	for _, logo := range logos {
		logoVariants, err := s.logoRepo.ListVariantsByLogo(ctx, logo.ID)
		if err != nil {
			return nil, err
		}
		variants = append(variants, logoVariants...)
	}

	return &LogoDetail{Generation: gen, Logos: logos, Variants: variants}, nil
}

func (s *logoService) List(ctx context.Context, userID string, limit int) ([]*models.LogoGeneration, error) {
	return s.logoRepo.ListGenerationsByUser(ctx, userID, limit)
}

func (s *logoService) getOwned(ctx context.Context, userID string, id uuid.UUID) (*models.LogoGeneration, error) {
	gen, err := s.logoRepo.GetGenerationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if gen.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return gen, nil
}

// renderJob is one (style, variation) render unit.
type renderJob struct {
	style     string
	variation int
}

func (s *logoService) Run(ctx context.Context, id uuid.UUID) error {
	gen, err := s.logoRepo.GetGenerationByID(ctx, id)
	if err != nil {
		return err
	}

	if err := gen.MarkProcessing(); err != nil {
		return err
	}
	if err := s.logoRepo.UpdateGenerationStatus(ctx, gen); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	jobs := make([]renderJob, 0, gen.TotalLogosRequested)
	for _, style := range models.LogoStyles {
		for v := 1; v <= models.VariationsPerStyle; v++ {
			jobs = append(jobs, renderJob{style: style, variation: v})
		}
	}

	items := make([]llm.WorkItem[*models.GeneratedLogo], 0, len(jobs))
	for _, job := range jobs {
		items = append(items, llm.WorkItem[*models.GeneratedLogo]{
			ID: fmt.Sprintf("%s-%d", job.style, job.variation),
			Execute: func(ctx context.Context) (*models.GeneratedLogo, error) {
				return s.renderOne(ctx, gen, job)
			},
		})
	}

	results := llm.Process(ctx, s.pool, items, nil)

	var rendered, failed int
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			s.logger.Warn("logo render failed",
				zap.String("generation_id", id.String()),
				zap.String("job", r.ID),
				zap.Error(r.Err))
			continue
		}
		rendered++
	}

	now := time.Now()
	gen.CompletedAt = &now
	gen.CostCents = rendered * costPerImageCents
	if failed == 0 {
		gen.Status = models.LogoCompleted
	} else {
		// Successfully rendered logos stay visible on a failed batch.
		gen.Status = models.LogoFailed
		gen.ErrorMessage = fmt.Sprintf("%d of %d logos failed: %v", failed, len(jobs), firstErr)
	}
	if err := s.logoRepo.UpdateGenerationStatus(ctx, gen); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	s.logger.Info("logo generation finished",
		zap.String("generation_id", id.String()),
		zap.Int("rendered", rendered),
		zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstream, firstErr)
	}
	return nil
}

func (s *logoService) renderOne(ctx context.Context, gen *models.LogoGeneration, job renderJob) (*models.GeneratedLogo, error) {
	prompt := BuildLogoPrompt(gen.BusinessName, gen.BusinessDescription, job.style, job.variation)

	start := time.Now()
	data, err := s.imageGen.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	key := fmt.Sprintf("logos/%s/%s-%d.svg", gen.ID, job.style, job.variation)
	if err := s.store.Put(key, data); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	logo := &models.GeneratedLogo{
		LogoGenerationID: gen.ID,
		Style:            job.style,
		Variation:        job.variation,
		PromptUsed:       prompt,
		FilePath:         key,
		FileSize:         int64(len(data)),
		Width:            1024,
		Height:           1024,
		GenerationTimeMS: elapsed.Milliseconds(),
	}
	if err := s.logoRepo.CreateLogo(ctx, logo); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	if _, err := s.logoRepo.IncrementCompleted(ctx, gen.ID); err != nil {
		s.logger.Warn("completion counter increment failed",
			zap.String("generation_id", gen.ID.String()),
			zap.Error(err))
	}

	return logo, nil
}

func (s *logoService) Customize(ctx context.Context, userID string, id uuid.UUID, req CustomizeRequest) (*CustomizeResult, error) {
	if len(req.ColorSchemes) == 0 {
		return nil, apperrors.NewValidationError("color_schemes", "at least one scheme is required")
	}
	for _, scheme := range req.ColorSchemes {
		if !s.recolorer.Has(scheme) {
			return nil, apperrors.NewValidationError("color_schemes", fmt.Sprintf("unknown color scheme %q", scheme))
		}
	}

	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	logos, err := s.logoRepo.ListLogosByGeneration(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(logos) == 0 {
		return nil, apperrors.NewValidationError("id", "generation has no rendered logos yet")
	}

	result := &CustomizeResult{}
	for _, logo := range logos {
		for _, scheme := range req.ColorSchemes {
			variant, err := s.customizeOne(ctx, logo, scheme)
			switch {
			case err != nil:
				result.Failed++
				s.logger.Warn("variant render failed",
					zap.String("logo_id", logo.ID.String()),
					zap.String("scheme", scheme),
					zap.Error(err))
			case variant.existing:
				result.Existing++
				result.Variants = append(result.Variants, variant.variant)
			default:
				result.Created++
				result.Variants = append(result.Variants, variant.variant)
			}
		}
	}

	return result, nil
}

type customizeOutcome struct {
	variant  *models.LogoColorVariant
	existing bool
}

func (s *logoService) customizeOne(ctx context.Context, logo *models.GeneratedLogo, scheme string) (*customizeOutcome, error) {
	existing, err := s.logoRepo.GetVariant(ctx, logo.ID, scheme)
	if err == nil {
		return &customizeOutcome{variant: existing, existing: true}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	original, err := s.store.Get(logo.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	recolored, err := s.recolorer.Recolor(original, scheme)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("logos/%s/%s-%d-%s.svg", logo.LogoGenerationID, logo.Style, logo.Variation, scheme)
	if err := s.store.Put(key, recolored); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	variant := &models.LogoColorVariant{
		GeneratedLogoID: logo.ID,
		ColorScheme:     scheme,
		FilePath:        key,
		FileSize:        int64(len(recolored)),
	}
	if err := s.logoRepo.CreateVariant(ctx, variant); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	return &customizeOutcome{variant: variant}, nil
}

func (s *logoService) GetFile(ctx context.Context, userID string, logoID uuid.UUID, scheme string) ([]byte, error) {
	logo, err := s.logoRepo.GetLogoByID(ctx, logoID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, userID, logo.LogoGenerationID); err != nil {
		return nil, err
	}

	path := logo.FilePath
	if scheme != "" {
		variant, err := s.logoRepo.GetVariant(ctx, logoID, scheme)
		if err != nil {
			return nil, err
		}
		path = variant.FilePath
	}

	data, err := s.store.Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return data, nil
}

func (s *logoService) DownloadZip(ctx context.Context, userID string, id uuid.UUID) ([]byte, error) {
	gen, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	logos, err := s.logoRepo.ListLogosByGeneration(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(logos) == 0 {
		return nil, apperrors.ErrNotFound
	}

	slug := domains.Slugify(gen.BusinessName)
	if slug == "" {
		slug = "logos"
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	addEntry := func(name, path string) error {
		data, err := s.store.Get(path)
		if err != nil {
			// Missing files are skipped, not fatal to the archive.
			s.logger.Warn("zip entry skipped", zap.String("path", path), zap.Error(err))
			return nil
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	for _, logo := range logos {
		name := fmt.Sprintf("%s-%s-%d.svg", slug, logo.Style, logo.Variation)
		if err := addEntry(name, logo.FilePath); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}

		variants, err := s.logoRepo.ListVariantsByLogo(ctx, logo.ID)
		if err != nil {
			return nil, err
		}
		for _, variant := range variants {
			name := fmt.Sprintf("%s-%s-%d-%s.svg", slug, logo.Style, logo.Variation, variant.ColorScheme)
			if err := addEntry(name, variant.FilePath); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	return buf.Bytes(), nil
}

func (s *logoService) ColorSchemes() []string {
	return s.recolorer.Schemes()
}

// logoStyleDescriptions feed the image prompt per style.
var logoStyleDescriptions = map[string]string{
	"minimalist": "clean lines, generous whitespace, single focal shape, flat design",
	"modern":     "bold geometry, gradient accents, contemporary sans-serif lettering",
	"playful":    "rounded shapes, friendly mascot-like forms, bright saturated colors",
	"classic":    "timeless emblem composition, serif lettering, balanced symmetry",
}

// BuildLogoPrompt constructs the image-generation prompt for one render.
// The variation index nudges the model toward distinct compositions.
func BuildLogoPrompt(businessName, description, style string, variation int) string {
	styleDesc := logoStyleDescriptions[style]
	if styleDesc == "" {
		styleDesc = style
	}
	return fmt.Sprintf(
		"Professional vector logo for %q, a business described as: %s. Style: %s (%s). Composition variation %d. SVG-friendly flat artwork, no photographic elements, no text other than the business name.",
		businessName, description, style, styleDesc, variation)
}
