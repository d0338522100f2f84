package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
)

// NewShareableLoaders builds the loader registry for the polymorphic
// (kind, id) references used by shares and exports. Each loader enforces
// ownership when ownerID is non-empty; an empty ownerID means anonymous
// share access.
func NewShareableLoaders(sessionRepo repositories.SessionRepository, logoRepo repositories.LogoRepository) map[models.ShareableKind]ShareableLoader {
	return map[models.ShareableKind]ShareableLoader{
		models.KindGenerationSession: func(ctx context.Context, id uuid.UUID, ownerID string) (any, error) {
			session, err := sessionRepo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if ownerID != "" && session.UserID != ownerID {
				return nil, apperrors.ErrForbidden
			}
			return session, nil
		},
		models.KindLogoGeneration: func(ctx context.Context, id uuid.UUID, ownerID string) (any, error) {
			gen, err := logoRepo.GetGenerationByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if ownerID != "" && gen.UserID != ownerID {
				return nil, apperrors.ErrForbidden
			}
			logos, err := logoRepo.ListLogosByGeneration(ctx, id)
			if err != nil {
				return nil, err
			}
			return &LogoDetail{Generation: gen, Logos: logos}, nil
		},
	}
}
