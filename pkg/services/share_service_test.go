package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
)

// shareFixture wires a share service over a fake repo with one pending
// session owned by "owner" as shareable content.
type shareFixture struct {
	svc       ShareService
	shareRepo *fakeShareRepo
	session   *models.GenerationSession
}

func newShareFixture(t *testing.T) *shareFixture {
	t.Helper()

	sessionRepo := newFakeSessionRepo()
	logoRepo := newFakeLogoRepo()

	session := models.NewGenerationSession("owner", nil, "a coffee shop for night owls", models.ModeBrandable, false, []string{"mock-a"})
	require.NoError(t, sessionRepo.Create(context.Background(), session))

	shareRepo := newFakeShareRepo()
	svc := NewShareService(shareRepo, NewShareableLoaders(sessionRepo, logoRepo), zap.NewNop())
	return &shareFixture{svc: svc, shareRepo: shareRepo, session: session}
}

func TestShareServiceCreatePublic(t *testing.T) {
	f := newShareFixture(t)

	share, err := f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind: models.KindGenerationSession,
		ID:   f.session.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ShareTypePublic, share.ShareType)
	assert.True(t, share.IsActive)
	assert.False(t, share.RequiresPassword())
	assert.NotEqual(t, uuid.Nil, share.ID)
}

func TestShareServiceCreateValidation(t *testing.T) {
	f := newShareFixture(t)

	var verr *apperrors.ValidationError

	_, err := f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind: "bookmark",
		ID:   f.session.ID,
	})
	require.ErrorAs(t, err, &verr)

	past := time.Now().Add(-time.Hour)
	_, err = f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind:      models.KindGenerationSession,
		ID:        f.session.ID,
		ExpiresAt: &past,
	})
	require.ErrorAs(t, err, &verr)
}

func TestShareServiceCreateEnforcesOwnership(t *testing.T) {
	f := newShareFixture(t)

	_, err := f.svc.Create(context.Background(), "intruder", CreateShareRequest{
		Kind: models.KindGenerationSession,
		ID:   f.session.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind: models.KindGenerationSession,
		ID:   uuid.New(),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestShareServiceAccessBumpsViewCount(t *testing.T) {
	f := newShareFixture(t)

	share, err := f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind: models.KindGenerationSession,
		ID:   f.session.ID,
	})
	require.NoError(t, err)

	content, err := f.svc.Access(context.Background(), share.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, content.Share.ViewCount)
	require.NotNil(t, content.Content)

	session, ok := content.Content.(*models.GenerationSession)
	require.True(t, ok)
	assert.Equal(t, f.session.ID, session.ID)

	_, err = f.svc.Access(context.Background(), share.ID, false)
	require.NoError(t, err)

	stored, err := f.shareRepo.GetByID(context.Background(), share.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ViewCount)
}

func TestShareServicePasswordGate(t *testing.T) {
	f := newShareFixture(t)

	share, err := f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind:     models.KindGenerationSession,
		ID:       f.session.ID,
		Password: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShareTypePasswordProtected, share.ShareType)

	_, err = f.svc.Access(context.Background(), share.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrShareLocked)

	err = f.svc.Unlock(context.Background(), share.ID, "wrong")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.Unlock(context.Background(), share.ID, "hunter2"))

	content, err := f.svc.Access(context.Background(), share.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, content.Share.ViewCount)
}

func TestShareServiceDeactivate(t *testing.T) {
	f := newShareFixture(t)

	share, err := f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind: models.KindGenerationSession,
		ID:   f.session.ID,
	})
	require.NoError(t, err)

	err = f.svc.Deactivate(context.Background(), "intruder", share.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.Deactivate(context.Background(), "owner", share.ID))

	_, err = f.svc.Access(context.Background(), share.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrShareInaccessible)

	// Unlock is also gated on accessibility.
	err = f.svc.Unlock(context.Background(), share.ID, "anything")
	assert.ErrorIs(t, err, apperrors.ErrShareInaccessible)
}

func TestShareServiceExpiredShareInaccessible(t *testing.T) {
	f := newShareFixture(t)

	soon := time.Now().Add(30 * time.Millisecond)
	share, err := f.svc.Create(context.Background(), "owner", CreateShareRequest{
		Kind:      models.KindGenerationSession,
		ID:        f.session.ID,
		ExpiresAt: &soon,
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = f.svc.Access(context.Background(), share.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrShareInaccessible)
}
