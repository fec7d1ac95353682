package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

func TestDashboardServiceMetricsAggregatesPublished(t *testing.T) {
	store := &timetableStoreStub{}
	version := &models.TimetableVersion{Status: models.TimetableStatusPublished}
	require.NoError(t, store.CreateVersion(context.Background(), nil, version))
	require.NoError(t, store.InsertBlocks(context.Background(), nil, version.ID, []models.ScheduleBlock{
		{ID: "blk-1", RoomName: "Aula 101 (Teoría)", ProgramName: "APSTI"},
		{ID: "blk-2", RoomName: "Aula 101 (Teoría)", ProgramName: "APSTI"},
		{ID: "blk-3", RoomName: "Lab Computación 1", ProgramName: "CONTABILIDAD"},
	}))

	service := NewDashboardService(store, nil, zap.NewNop(), DashboardServiceConfig{})

	resp, cached, err := service.Metrics(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, version.Version, resp.Version)
	assert.Equal(t, 3, resp.Summary.TotalHours)
	assert.Equal(t, 2, resp.Summary.ByRoom["Aula 101 (Teoría)"])
	assert.Equal(t, 1, resp.Summary.ByProgram["CONTABILIDAD"])
}

func TestDashboardServiceMetricsWithoutPublished(t *testing.T) {
	service := NewDashboardService(&timetableStoreStub{}, nil, zap.NewNop(), DashboardServiceConfig{})

	_, _, err := service.Metrics(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDashboardServiceMetricsUsesCache(t *testing.T) {
	store := &timetableStoreStub{}
	version := &models.TimetableVersion{Status: models.TimetableStatusPublished}
	require.NoError(t, store.CreateVersion(context.Background(), nil, version))
	require.NoError(t, store.InsertBlocks(context.Background(), nil, version.ID, []models.ScheduleBlock{
		{ID: "blk-1", RoomName: "Aula 101 (Teoría)", ProgramName: "APSTI"},
	}))

	cacheRepo := &cacheRepoStub{items: map[string][]byte{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	service := NewDashboardService(store, cache, zap.NewNop(), DashboardServiceConfig{})

	_, cached, err := service.Metrics(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	resp, cached, err := service.Metrics(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, resp.Summary.TotalHours)
}

// --- Fixtures ---

type cacheRepoStub struct {
	items map[string][]byte
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.items[key] = raw
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.items = map[string][]byte{}
	return nil
}
