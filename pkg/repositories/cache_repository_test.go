//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/testhelpers"
)

func TestCacheRepositoryGenerationRoundTrip(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewCacheRepository(testDB.DB)
	ctx := context.Background()

	hash := models.ContentHash("a bakery for cats", models.ModeCreative, false)

	entry, err := repo.GetGeneration(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, repo.SaveGeneration(ctx, hash, []string{"Whiskoven", "PurrBakes"}))

	entry, err = repo.GetGeneration(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, hash, entry.ContentHash)
	assert.Equal(t, []string{"Whiskoven", "PurrBakes"}, entry.Names)
	assert.True(t, entry.Fresh(time.Now()))
}

func TestCacheRepositoryGenerationNewestRowWins(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewCacheRepository(testDB.DB)
	ctx := context.Background()

	hash := models.ContentHash("a kayak rental", models.ModeCreative, true)

	require.NoError(t, repo.SaveGeneration(ctx, hash, []string{"OldNames"}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.SaveGeneration(ctx, hash, []string{"FreshNames"}))

	entry, err := repo.GetGeneration(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, []string{"FreshNames"}, entry.Names)
}

func TestCacheRepositoryDomainCheckRoundTrip(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewCacheRepository(testDB.DB)
	ctx := context.Background()

	entry, err := repo.GetDomainCheck(ctx, "whiskoven")
	require.NoError(t, err)
	assert.Nil(t, entry)

	results := map[string]models.TLDAvailability{
		".com": {Available: true, Price: "$12.99"},
		".io":  {Available: false},
	}
	require.NoError(t, repo.SaveDomainCheck(ctx, "whiskoven", results))

	entry, err = repo.GetDomainCheck(ctx, "whiskoven")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "whiskoven", entry.Domain)
	assert.Equal(t, results, entry.Results)
}
