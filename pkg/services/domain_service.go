package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/domains"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
)

// DomainService checks registrar availability for business names, with a
// 24-hour cache keyed by the slugified name.
type DomainService interface {
	// CheckName returns per-TLD availability for one business name.
	CheckName(ctx context.Context, name string) (map[string]models.TLDAvailability, error)
	// CheckNames checks several names, skipping ones that fail. The
	// returned map is keyed by the original name.
	CheckNames(ctx context.Context, names []string) map[string]map[string]models.TLDAvailability
}

type domainService struct {
	checker   domains.Checker
	cacheRepo repositories.CacheRepository
	logger    *zap.Logger
}

// NewDomainService creates a new DomainService.
func NewDomainService(checker domains.Checker, cacheRepo repositories.CacheRepository, logger *zap.Logger) DomainService {
	return &domainService{
		checker:   checker,
		cacheRepo: cacheRepo,
		logger:    logger.Named("domain-service"),
	}
}

var _ DomainService = (*domainService)(nil)

func (s *domainService) CheckName(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
	slug := domains.Slugify(name)
	if slug == "" {
		return nil, apperrors.NewValidationError("name", "contains no domain-safe characters")
	}

	entry, err := s.cacheRepo.GetDomainCheck(ctx, slug)
	if err != nil {
		s.logger.Warn("domain cache read failed", zap.String("domain", slug), zap.Error(err))
	} else if entry != nil && entry.Fresh(time.Now()) {
		return entry.Results, nil
	}

	results, err := s.checker.Check(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	if err := s.cacheRepo.SaveDomainCheck(ctx, slug, results); err != nil {
		// A failed cache write never fails the check itself.
		s.logger.Warn("domain cache write failed", zap.String("domain", slug), zap.Error(err))
	}

	return results, nil
}

func (s *domainService) CheckNames(ctx context.Context, names []string) map[string]map[string]models.TLDAvailability {
	checked := make(map[string]map[string]models.TLDAvailability, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		results, err := s.CheckName(ctx, name)
		if err != nil {
			s.logger.Warn("domain check skipped", zap.String("name", name), zap.Error(err))
			continue
		}
		checked[name] = results
	}
	return checked
}
