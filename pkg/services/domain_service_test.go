package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/domains"
	"github.com/namerhq/namer-engine/pkg/models"
)

func TestDomainServiceCheckName(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	checker := &domains.MockChecker{
		CheckFunc: func(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
			return map[string]models.TLDAvailability{
				"com": {Available: true, Price: "12.99"},
				"io":  {Available: false},
			}, nil
		},
	}
	svc := NewDomainService(checker, cacheRepo, zap.NewNop())

	results, err := svc.CheckName(context.Background(), "Brewline")
	require.NoError(t, err)
	assert.True(t, results["com"].Available)
	assert.False(t, results["io"].Available)
	assert.Equal(t, 1, checker.CheckCalls)

	// Second call is served from the cache.
	again, err := svc.CheckName(context.Background(), "Brewline")
	require.NoError(t, err)
	assert.Equal(t, results, again)
	assert.Equal(t, 1, checker.CheckCalls)
}

func TestDomainServiceCheckNameStaleCacheRefetches(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	cacheRepo.domain["brewline"] = &models.DomainCheckCache{
		Domain:   "brewline",
		Results:  map[string]models.TLDAvailability{"com": {Available: false}},
		CachedAt: time.Now().Add(-25 * time.Hour),
	}

	checker := &domains.MockChecker{
		CheckFunc: func(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
			return map[string]models.TLDAvailability{"com": {Available: true}}, nil
		},
	}
	svc := NewDomainService(checker, cacheRepo, zap.NewNop())

	results, err := svc.CheckName(context.Background(), "Brewline")
	require.NoError(t, err)
	assert.True(t, results["com"].Available)
	assert.Equal(t, 1, checker.CheckCalls)
}

func TestDomainServiceCheckNameUnusable(t *testing.T) {
	svc := NewDomainService(&domains.MockChecker{}, newFakeCacheRepo(), zap.NewNop())

	_, err := svc.CheckName(context.Background(), "!!!")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDomainServiceCheckNameUpstreamFailure(t *testing.T) {
	checker := &domains.MockChecker{
		CheckFunc: func(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
			return nil, errors.New("registrar timeout")
		},
	}
	svc := NewDomainService(checker, newFakeCacheRepo(), zap.NewNop())

	_, err := svc.CheckName(context.Background(), "Brewline")
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestDomainServiceCheckNamesSkipsFailures(t *testing.T) {
	checker := &domains.MockChecker{
		CheckFunc: func(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
			if name == "Broken" {
				return nil, errors.New("registrar timeout")
			}
			return map[string]models.TLDAvailability{"com": {Available: true}}, nil
		},
	}
	svc := NewDomainService(checker, newFakeCacheRepo(), zap.NewNop())

	checked := svc.CheckNames(context.Background(), []string{"Brewline", "Broken", "Nightcap"})
	assert.Len(t, checked, 2)
	assert.Contains(t, checked, "Brewline")
	assert.Contains(t, checked, "Nightcap")
	assert.NotContains(t, checked, "Broken")
}

func TestDomainServiceCheckNamesStopsOnCancelledContext(t *testing.T) {
	checker := &domains.MockChecker{
		CheckFunc: func(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
			return map[string]models.TLDAvailability{"com": {Available: true}}, nil
		},
	}
	svc := NewDomainService(checker, newFakeCacheRepo(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checked := svc.CheckNames(ctx, []string{"Brewline", "Nightcap"})
	assert.Empty(t, checked)
}
