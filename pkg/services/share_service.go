package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/crypto"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
)

// ShareableLoader resolves one polymorphic kind to a serializable payload,
// enforcing that the entity exists and belongs to ownerID when given.
type ShareableLoader func(ctx context.Context, id uuid.UUID, ownerID string) (any, error)

// CreateShareRequest issues a public link for a result set.
type CreateShareRequest struct {
	Kind      models.ShareableKind `json:"shareable_kind"`
	ID        uuid.UUID            `json:"shareable_id"`
	Password  string               `json:"password,omitempty"`
	ExpiresIn *time.Duration       `json:"-"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

// SharedContent is the public view served for a share UUID.
type SharedContent struct {
	Share   *models.Share `json:"share"`
	Content any           `json:"content"`
}

// ShareService issues and serves share links over generation sessions and
// logo batches.
type ShareService interface {
	// Create validates the target exists and is owned by the user, then
	// issues a share. A password upgrades the share to
	// password-protected.
	Create(ctx context.Context, userID string, req CreateShareRequest) (*models.Share, error)
	// List returns the user's shares.
	List(ctx context.Context, userID string) ([]*models.Share, error)
	// Deactivate revokes a share.
	Deactivate(ctx context.Context, userID string, id uuid.UUID) error
	// Access serves a share to an anonymous viewer. unlocked reports
	// whether a password gate was already passed this browser session.
	// Inactive or expired shares surface ErrShareInaccessible; a locked
	// password share surfaces ErrShareLocked. Successful access bumps
	// the view counter.
	Access(ctx context.Context, shareID uuid.UUID, unlocked bool) (*SharedContent, error)
	// Unlock verifies the password for a protected share.
	Unlock(ctx context.Context, shareID uuid.UUID, password string) error
}

type shareService struct {
	shareRepo repositories.ShareRepository
	loaders   map[models.ShareableKind]ShareableLoader
	logger    *zap.Logger
}

// NewShareService creates a new ShareService with an explicit loader per
// shareable kind.
func NewShareService(shareRepo repositories.ShareRepository, loaders map[models.ShareableKind]ShareableLoader, logger *zap.Logger) ShareService {
	return &shareService{
		shareRepo: shareRepo,
		loaders:   loaders,
		logger:    logger.Named("share-service"),
	}
}

var _ ShareService = (*shareService)(nil)

func (s *shareService) Create(ctx context.Context, userID string, req CreateShareRequest) (*models.Share, error) {
	if !models.KnownShareableKinds[req.Kind] {
		return nil, apperrors.NewValidationError("shareable_kind", fmt.Sprintf("unknown kind %q", req.Kind))
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return nil, apperrors.NewValidationError("expires_at", "must be in the future")
	}

	loader := s.loaders[req.Kind]
	if loader == nil {
		return nil, apperrors.NewValidationError("shareable_kind", fmt.Sprintf("no loader for kind %q", req.Kind))
	}
	if _, err := loader(ctx, req.ID, userID); err != nil {
		return nil, err
	}

	share := &models.Share{
		UserID:        userID,
		ShareableKind: req.Kind,
		ShareableID:   req.ID,
		ShareType:     models.ShareTypePublic,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      true,
	}

	if req.Password != "" {
		hash, err := crypto.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		share.ShareType = models.ShareTypePasswordProtected
		share.PasswordHash = hash
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	s.logger.Info("share created",
		zap.String("share_id", share.ID.String()),
		zap.String("kind", string(req.Kind)),
		zap.String("share_type", share.ShareType))

	return share, nil
}

func (s *shareService) List(ctx context.Context, userID string) ([]*models.Share, error) {
	return s.shareRepo.ListByUser(ctx, userID)
}

func (s *shareService) Deactivate(ctx context.Context, userID string, id uuid.UUID) error {
	share, err := s.shareRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if share.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.shareRepo.Deactivate(ctx, id)
}

func (s *shareService) Access(ctx context.Context, shareID uuid.UUID, unlocked bool) (*SharedContent, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}

	if !share.IsAccessible(time.Now()) {
		return nil, apperrors.ErrShareInaccessible
	}
	if share.RequiresPassword() && !unlocked {
		return nil, apperrors.ErrShareLocked
	}

	loader := s.loaders[share.ShareableKind]
	if loader == nil {
		return nil, apperrors.ErrNotFound
	}
	// Anonymous access bypasses the ownership check.
	content, err := loader(ctx, share.ShareableID, "")
	if err != nil {
		return nil, err
	}

	if err := s.shareRepo.IncrementViewCount(ctx, shareID); err != nil {
		s.logger.Warn("view count increment failed",
			zap.String("share_id", shareID.String()),
			zap.Error(err))
	}
	share.ViewCount++

	return &SharedContent{Share: share, Content: content}, nil
}

func (s *shareService) Unlock(ctx context.Context, shareID uuid.UUID, password string) error {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if !share.IsAccessible(time.Now()) {
		return apperrors.ErrShareInaccessible
	}
	if !share.RequiresPassword() {
		return nil
	}
	if !crypto.VerifyPassword(password, share.PasswordHash) {
		return apperrors.ErrForbidden
	}
	return nil
}
