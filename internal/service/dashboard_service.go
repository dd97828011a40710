package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

const (
	adminStatsCacheKey  = "dashboard:admin-stats"
	lowStockCacheKey    = "dashboard:low-stock"
	defaultDashboardTTL = 60 * time.Second
)

type statsStore interface {
	AdminStats(ctx context.Context) (*dto.AdminStats, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService aggregates platform-wide figures for the admin views.
// Results are cached in Redis because both queries scan whole tables.
type DashboardService struct {
	stats  statsStore
	banks  bankStore
	cache  dashboardCache
	logger *zap.Logger
	ttl    time.Duration
}

// NewDashboardService constructs the service. A nil cache disables caching.
func NewDashboardService(stats statsStore, banks bankStore, cache dashboardCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &DashboardService{stats: stats, banks: banks, cache: cache, logger: logger, ttl: ttl}
}

// AdminStats returns the admin counter cards, served from cache when fresh.
func (s *DashboardService) AdminStats(ctx context.Context) (*dto.AdminStats, error) {
	if s.cache != nil {
		var cached dto.AdminStats
		err := s.cache.Get(ctx, adminStatsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !isCacheMiss(err) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.stats.AdminStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute admin stats")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, adminStatsCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// LowStock flags every bank group at or under its threshold, across all
// banks, for the admin low-stock overview.
func (s *DashboardService) LowStock(ctx context.Context) ([]dto.LowStockEntry, error) {
	if s.cache != nil {
		var cached []dto.LowStockEntry
		err := s.cache.Get(ctx, lowStockCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !isCacheMiss(err) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	banks, err := s.banks.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list banks")
	}

	entries := make([]dto.LowStockEntry, 0)
	for i := range banks {
		bank := &banks[i]
		threshold := bank.LowStockThreshold
		if threshold <= 0 {
			threshold = 5
		}
		for _, group := range bank.LowStockGroups() {
			entries = append(entries, dto.LowStockEntry{
				BankID:    bank.ID,
				BankName:  bank.Name,
				Group:     group,
				Units:     bank.Stock.Units(group),
				Threshold: threshold,
			})
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, lowStockCacheKey, entries, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// BankOverview combines a bank's profile with its own low-stock flags for
// the operator dashboard header.
func (s *DashboardService) BankOverview(ctx context.Context, bankID string) (*models.BloodBank, []models.BloodGroup, error) {
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
	}
	return bank, bank.LowStockGroups(), nil
}

func isCacheMiss(err error) bool {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code == appErrors.ErrCacheMiss.Code
	}
	return false
}
