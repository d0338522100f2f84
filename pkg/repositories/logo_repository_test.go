//go:build integration

package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/testhelpers"
)

func createTestGeneration(t *testing.T, repo LogoRepository) *models.LogoGeneration {
	t.Helper()
	gen := models.NewLogoGeneration("user-logo-1", nil, "BrewHound", "A coffee shop for dog lovers")
	require.NoError(t, repo.CreateGeneration(context.Background(), gen))
	return gen
}

func TestLogoRepositoryGenerationRoundTrip(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewLogoRepository(testDB.DB)
	ctx := context.Background()

	gen := createTestGeneration(t, repo)

	got, err := repo.GetGenerationByID(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LogoPending, got.Status)
	assert.Equal(t, 12, got.TotalLogosRequested)
	assert.Equal(t, 0, got.LogosCompleted)
}

func TestLogoRepositoryIncrementCompletedIsAtomic(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewLogoRepository(testDB.DB)
	ctx := context.Background()

	gen := createTestGeneration(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementCompleted(ctx, gen.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetGenerationByID(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.LogosCompleted)
}

func TestLogoRepositoryLogosAndVariants(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewLogoRepository(testDB.DB)
	ctx := context.Background()

	gen := createTestGeneration(t, repo)

	logo := &models.GeneratedLogo{
		LogoGenerationID: gen.ID,
		Style:            "minimalist",
		Variation:        1,
		PromptUsed:       "minimalist logo for BrewHound",
		FilePath:         "logos/" + gen.ID.String() + "/minimalist-1.svg",
		FileSize:         512,
		Width:            1024,
		Height:           1024,
	}
	require.NoError(t, repo.CreateLogo(ctx, logo))

	logos, err := repo.ListLogosByGeneration(ctx, gen.ID)
	require.NoError(t, err)
	require.Len(t, logos, 1)
	assert.Equal(t, "minimalist", logos[0].Style)

	variant := &models.LogoColorVariant{
		GeneratedLogoID: logo.ID,
		ColorScheme:     "ocean",
		FilePath:        "logos/" + gen.ID.String() + "/minimalist-1-ocean.svg",
		FileSize:        498,
	}
	require.NoError(t, repo.CreateVariant(ctx, variant))

	got, err := repo.GetVariant(ctx, logo.ID, "ocean")
	require.NoError(t, err)
	assert.Equal(t, variant.ID, got.ID)

	_, err = repo.GetVariant(ctx, logo.ID, "sunset")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Unique constraint blocks a duplicate (logo, scheme) pair.
	dup := &models.LogoColorVariant{
		GeneratedLogoID: logo.ID,
		ColorScheme:     "ocean",
		FilePath:        "logos/dup.svg",
	}
	assert.Error(t, repo.CreateVariant(ctx, dup))
}

func TestLogoRepositoryUpdateGenerationStatus(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewLogoRepository(testDB.DB)
	ctx := context.Background()

	gen := createTestGeneration(t, repo)
	require.NoError(t, gen.MarkProcessing())
	require.NoError(t, repo.UpdateGenerationStatus(ctx, gen))

	now := time.Now()
	gen.Status = models.LogoFailed
	gen.ErrorMessage = "image provider unavailable"
	gen.CompletedAt = &now
	require.NoError(t, repo.UpdateGenerationStatus(ctx, gen))

	got, err := repo.GetGenerationByID(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LogoFailed, got.Status)
	assert.Equal(t, "image provider unavailable", got.ErrorMessage)
	assert.NotNil(t, got.CompletedAt)
}

func TestLogoRepositoryGetGenerationNotFound(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewLogoRepository(testDB.DB)

	_, err := repo.GetGenerationByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
