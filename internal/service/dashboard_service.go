package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

const (
	dashboardMetricsCacheKey = "sigha:dashboard:metrics"
	dashboardCachePattern    = "sigha:dashboard:*"
)

type publishedTimetableReader interface {
	FindPublished(ctx context.Context) (*models.TimetableVersion, error)
	ListBlocks(ctx context.Context, versionID string) ([]models.ScheduleBlock, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService summarises the published timetable for dashboard consumers.
type DashboardService struct {
	timetables publishedTimetableReader
	cache      *CacheService
	logger     *zap.Logger
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(timetables publishedTimetableReader, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{timetables: timetables, cache: cache, logger: logger, cfg: cfg}
}

// Metrics returns hour totals for the published timetable and indicates cache
// utilisation.
func (s *DashboardService) Metrics(ctx context.Context) (*dto.DashboardMetricsResponse, bool, error) {
	if summary, hit, err := s.tryCache(ctx); err != nil {
		return nil, false, err
	} else if hit {
		return summary, true, nil
	}

	version, err := s.timetables.FindPublished(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no published timetable")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
	}
	blocks, err := s.timetables.ListBlocks(ctx, version.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable blocks")
	}

	summary := &dto.DashboardMetricsResponse{
		Version: version.Version,
		Summary: allocator.Summarize(blocks),
	}
	s.persistCache(ctx, summary)
	return summary, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context) (*dto.DashboardMetricsResponse, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	var cached dto.DashboardMetricsResponse
	hit, err := s.cache.Get(ctx, dashboardMetricsCacheKey, &cached)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return &cached, true, nil
	}
	return nil, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardMetricsCacheKey, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}
