package service

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type statsStoreStub struct {
	stats *dto.AdminStats
	calls int
}

func (s *statsStoreStub) AdminStats(ctx context.Context) (*dto.AdminStats, error) {
	s.calls++
	return s.stats, nil
}

type memoryCacheStub struct {
	values map[string]interface{}
	sets   int
}

func newMemoryCacheStub() *memoryCacheStub {
	return &memoryCacheStub{values: make(map[string]interface{})}
}

func (c *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := c.values[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrCacheMiss, "miss")
	}
	switch d := dest.(type) {
	case *dto.AdminStats:
		*d = *v.(*dto.AdminStats)
	case *[]dto.LowStockEntry:
		*d = v.([]dto.LowStockEntry)
	}
	return nil
}

func (c *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.values[key] = value
	c.sets++
	return nil
}

func TestAdminStatsCacheAside(t *testing.T) {
	stats := &statsStoreStub{stats: &dto.AdminStats{Users: 10, BloodBanks: 2}}
	cache := newMemoryCacheStub()
	svc := NewDashboardService(stats, newBankDirectoryStub(), cache, time.Minute, nil)

	first, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, first.Users)
	require.Equal(t, 1, stats.calls)
	require.Equal(t, 1, cache.sets)

	// Second call is served from cache.
	second, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, second.Users)
	require.Equal(t, 1, stats.calls)
}

func TestAdminStatsWithoutCache(t *testing.T) {
	stats := &statsStoreStub{stats: &dto.AdminStats{Users: 1}}
	svc := NewDashboardService(stats, newBankDirectoryStub(), nil, 0, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.AdminStats(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, 2, stats.calls)
}

func TestLowStockFlagsSupportedGroupsOnly(t *testing.T) {
	banks := newBankDirectoryStub(&models.BloodBank{
		ID:                "bank-1",
		Name:              "City Blood Bank",
		BloodGroups:       pq.StringArray{"A+", "O-"},
		Stock:             models.StockMap{models.GroupAPos: 2, models.GroupONeg: 9, models.GroupBPos: 0},
		LowStockThreshold: 3,
	})
	svc := NewDashboardService(&statsStoreStub{}, banks, nil, 0, nil)

	entries, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	// B+ is empty but unsupported by the bank, so only A+ is flagged.
	require.Len(t, entries, 1)
	require.Equal(t, models.GroupAPos, entries[0].Group)
	require.Equal(t, 2, entries[0].Units)
	require.Equal(t, 3, entries[0].Threshold)
}

func TestBankOverview(t *testing.T) {
	banks := newBankDirectoryStub(&models.BloodBank{
		ID:          "bank-1",
		BloodGroups: pq.StringArray{"A+"},
		Stock:       models.StockMap{models.GroupAPos: 1},
	})
	svc := NewDashboardService(&statsStoreStub{}, banks, nil, 0, nil)

	bank, low, err := svc.BankOverview(context.Background(), "bank-1")
	require.NoError(t, err)
	require.Equal(t, "bank-1", bank.ID)
	require.Equal(t, []models.BloodGroup{models.GroupAPos}, low)

	_, _, err = svc.BankOverview(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
