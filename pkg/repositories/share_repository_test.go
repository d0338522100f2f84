//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/testhelpers"
)

func TestShareRepositoryRoundTrip(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewShareRepository(testDB.DB)
	ctx := context.Background()

	share := &models.Share{
		UserID:        "user-share-1",
		ShareableKind: models.KindGenerationSession,
		ShareableID:   uuid.New(),
		ShareType:     models.ShareTypePublic,
		IsActive:      true,
	}
	require.NoError(t, repo.Create(ctx, share))

	got, err := repo.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KindGenerationSession, got.ShareableKind)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.PasswordHash)

	require.NoError(t, repo.IncrementViewCount(ctx, share.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, share.ID))

	got, err = repo.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)

	require.NoError(t, repo.Deactivate(ctx, share.ID))
	got, err = repo.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestShareRepositoryPasswordAndExpiry(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewShareRepository(testDB.DB)
	ctx := context.Background()

	expires := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Millisecond)
	share := &models.Share{
		UserID:        "user-share-2",
		ShareableKind: models.KindLogoGeneration,
		ShareableID:   uuid.New(),
		ShareType:     models.ShareTypePasswordProtected,
		PasswordHash:  "salt$digest",
		ExpiresAt:     &expires,
		IsActive:      true,
	}
	require.NoError(t, repo.Create(ctx, share))

	got, err := repo.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, "salt$digest", got.PasswordHash)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, expires, *got.ExpiresAt, time.Second)
}

func TestShareRepositoryNotFound(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewShareRepository(testDB.DB)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.IncrementViewCount(context.Background(), uuid.New()), apperrors.ErrNotFound)
}

func TestExportRepositoryRoundTrip(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewExportRepository(testDB.DB)
	ctx := context.Background()

	export := &models.Export{
		UserID:         "user-export-1",
		ExportableKind: models.KindGenerationSession,
		ExportableID:   uuid.New(),
		Format:         models.ExportFormatCSV,
		FilePath:       "exports/test.csv",
		FileSize:       128,
	}
	require.NoError(t, repo.Create(ctx, export))

	got, err := repo.GetByID(ctx, export.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, got.Format)

	require.NoError(t, repo.IncrementDownloadCount(ctx, export.ID))
	got, err = repo.GetByID(ctx, export.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DownloadCount)

	require.NoError(t, repo.Delete(ctx, export.ID))
	_, err = repo.GetByID(ctx, export.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
