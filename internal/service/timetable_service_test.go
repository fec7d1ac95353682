package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

func TestTimetableServiceGenerateProducesProposal(t *testing.T) {
	service := newTimetableServiceFixture(t, timetableFixtureConfig{})

	resp, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProposalID)
	assert.NotEmpty(t, resp.Blocks)
	assert.Equal(t, len(resp.Blocks), resp.Summary.TotalHours)
}

func TestTimetableServiceGenerateFallsBackToDefaultCatalog(t *testing.T) {
	service := newTimetableServiceFixture(t, timetableFixtureConfig{emptyCatalog: true})

	resp, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Blocks, "empty catalog should fall back to built-in defaults")
}

func TestTimetableServiceGenerateWeeksOverrideShrinksTargets(t *testing.T) {
	service := newTimetableServiceFixture(t, timetableFixtureConfig{})

	long, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{WeeksPerTerm: 52})
	require.NoError(t, err)
	standard, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(long.Blocks), len(standard.Blocks))
}

func TestTimetableServiceSaveDraft(t *testing.T) {
	tx, mock := newTimetableTxMock(t)
	store := &timetableStoreStub{}
	service := newTimetableServiceFixture(t, timetableFixtureConfig{store: store, tx: tx})

	resp, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	version, err := service.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, models.TimetableStatusDraft, version.Status)
	assert.Len(t, store.blocks[version.ID], len(resp.Blocks))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Proposal is single-use.
	_, err = service.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSavePublish(t *testing.T) {
	tx, mock := newTimetableTxMock(t)
	store := &timetableStoreStub{}
	service := newTimetableServiceFixture(t, timetableFixtureConfig{store: store, tx: tx})

	resp, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	version, err := service.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID, Publish: true})
	require.NoError(t, err)
	assert.Equal(t, models.TimetableStatusPublished, version.Status)

	published, err := store.FindPublished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, version.ID, published.ID)
}

func TestTimetableServiceSaveUnknownProposal(t *testing.T) {
	service := newTimetableServiceFixture(t, timetableFixtureConfig{})

	_, err := service.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceCurrentWithoutPublished(t *testing.T) {
	service := newTimetableServiceFixture(t, timetableFixtureConfig{})

	_, err := service.Current(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceDeleteRejectsPublished(t *testing.T) {
	store := &timetableStoreStub{}
	service := newTimetableServiceFixture(t, timetableFixtureConfig{store: store})

	version := &models.TimetableVersion{Status: models.TimetableStatusPublished}
	require.NoError(t, store.CreateVersion(context.Background(), nil, version))

	err := service.Delete(context.Background(), version.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceDeleteDraft(t *testing.T) {
	store := &timetableStoreStub{}
	service := newTimetableServiceFixture(t, timetableFixtureConfig{store: store})

	version := &models.TimetableVersion{}
	require.NoError(t, store.CreateVersion(context.Background(), nil, version))

	require.NoError(t, service.Delete(context.Background(), version.ID))
	_, err := store.FindVersion(context.Background(), version.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// --- Fixtures ---

type timetableFixtureConfig struct {
	emptyCatalog bool
	store        timetableStore
	tx           txProvider
}

func newTimetableServiceFixture(t *testing.T, cfg timetableFixtureConfig) *TimetableService {
	t.Helper()

	catalog := catalogReaderStub{}
	if !cfg.emptyCatalog {
		catalog.courses = allocator.DefaultCatalog()
	}
	rooms := roomReaderStub{rooms: allocator.DefaultRooms()}
	store := cfg.store
	if store == nil {
		store = &timetableStoreStub{}
	}

	return NewTimetableService(
		catalog,
		rooms,
		store,
		cfg.tx,
		nil,
		nil,
		validator.New(),
		zap.NewNop(),
		TimetableServiceConfig{ProposalTTL: time.Hour},
	)
}

type catalogReaderStub struct {
	courses []models.Course
}

func (s catalogReaderStub) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.courses, nil
}

type roomReaderStub struct {
	rooms []models.Room
}

func (s roomReaderStub) ListOrdered(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type timetableStoreStub struct {
	versions []models.TimetableVersion
	blocks   map[string][]models.ScheduleBlock
}

func (s *timetableStoreStub) CreateVersion(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	version.ID = fmt.Sprintf("tt-%d", len(s.versions)+1)
	version.Version = len(s.versions) + 1
	if version.Status == "" {
		version.Status = models.TimetableStatusDraft
	}
	s.versions = append(s.versions, *version)
	return nil
}

func (s *timetableStoreStub) InsertBlocks(ctx context.Context, exec sqlx.ExtContext, versionID string, blocks []models.ScheduleBlock) error {
	if s.blocks == nil {
		s.blocks = make(map[string][]models.ScheduleBlock)
	}
	s.blocks[versionID] = append(s.blocks[versionID], blocks...)
	return nil
}

func (s *timetableStoreStub) Publish(ctx context.Context, exec sqlx.ExtContext, id string) error {
	found := false
	for idx := range s.versions {
		if s.versions[idx].ID == id {
			s.versions[idx].Status = models.TimetableStatusPublished
			found = true
		} else if s.versions[idx].Status == models.TimetableStatusPublished {
			s.versions[idx].Status = models.TimetableStatusArchived
		}
	}
	if !found {
		return sql.ErrNoRows
	}
	return nil
}

func (s *timetableStoreStub) FindVersion(ctx context.Context, id string) (*models.TimetableVersion, error) {
	for _, version := range s.versions {
		if version.ID == id {
			v := version
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timetableStoreStub) FindPublished(ctx context.Context) (*models.TimetableVersion, error) {
	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].Status == models.TimetableStatusPublished {
			v := s.versions[i]
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timetableStoreStub) ListVersions(ctx context.Context) ([]models.TimetableVersion, error) {
	out := make([]models.TimetableVersion, len(s.versions))
	copy(out, s.versions)
	return out, nil
}

func (s *timetableStoreStub) ListBlocks(ctx context.Context, versionID string) ([]models.ScheduleBlock, error) {
	return s.blocks[versionID], nil
}

func (s *timetableStoreStub) DeleteVersion(ctx context.Context, id string) error {
	for idx, version := range s.versions {
		if version.ID == id {
			s.versions = append(s.versions[:idx], s.versions[idx+1:]...)
			delete(s.blocks, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

type timetableTxMock struct {
	db *sqlx.DB
}

func newTimetableTxMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &timetableTxMock{db: sqlxdb}, mock
}

func (t *timetableTxMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
