package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

type catalogReader interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type roomInventoryReader interface {
	ListOrdered(ctx context.Context) ([]models.Room, error)
}

type timetableStore interface {
	CreateVersion(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error
	InsertBlocks(ctx context.Context, exec sqlx.ExtContext, versionID string, blocks []models.ScheduleBlock) error
	Publish(ctx context.Context, exec sqlx.ExtContext, id string) error
	FindVersion(ctx context.Context, id string) (*models.TimetableVersion, error)
	FindPublished(ctx context.Context) (*models.TimetableVersion, error)
	ListVersions(ctx context.Context) ([]models.TimetableVersion, error)
	ListBlocks(ctx context.Context, versionID string) ([]models.ScheduleBlock, error)
	DeleteVersion(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableServiceConfig governs the allocation grid and proposal retention.
type TimetableServiceConfig struct {
	Days         []string
	Slots        []models.TimeSlot
	Programs     []models.Program
	WeeksPerTerm int
	ProposalTTL  time.Duration
}

// TimetableService runs the allocation engine and manages versioned timetables.
type TimetableService struct {
	courses   catalogReader
	rooms     roomInventoryReader
	store     timetableStore
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig
	proposals *proposalStore
}

// NewTimetableService wires the allocation pipeline dependencies.
func NewTimetableService(
	courses catalogReader,
	rooms roomInventoryReader,
	store timetableStore,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &TimetableService{
		courses:   courses,
		rooms:     rooms,
		store:     store,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		proposals: newProposalStore(cfg.ProposalTTL),
	}
}

// Generate runs the engine over the current catalog and room inventory and
// keeps the result as an in-memory proposal until saved or expired.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}

	var rooms []models.Room
	if s.rooms != nil {
		rooms, err = s.rooms.ListOrdered(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room inventory")
		}
	}

	input := allocator.Input{
		Courses:      courses,
		Programs:     s.cfg.Programs,
		Rooms:        rooms,
		Days:         s.cfg.Days,
		Slots:        s.cfg.Slots,
		WeeksPerTerm: s.cfg.WeeksPerTerm,
	}
	if req.WeeksPerTerm > 0 {
		input.WeeksPerTerm = req.WeeksPerTerm
	}

	start := time.Now()
	blocks := allocator.Generate(input)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveAllocation(elapsed, len(blocks))
	}

	summary := allocator.Summarize(blocks)
	shortfalls := allocator.Shortfalls(input, blocks)

	proposal := timetableProposal{
		ID:           uuid.NewString(),
		Blocks:       blocks,
		Summary:      summary,
		Shortfalls:   shortfalls,
		WeeksPerTerm: input.WeeksPerTerm,
		RequestedAt:  time.Now().UTC(),
	}
	s.proposals.Save(proposal)

	s.logger.Info("timetable generated",
		zap.String("proposalId", proposal.ID),
		zap.Int("blocks", len(blocks)),
		zap.Int("shortfalls", len(shortfalls)),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.GenerateTimetableResponse{
		ProposalID: proposal.ID,
		Blocks:     blocks,
		Summary:    summary,
		Shortfalls: shortfalls,
	}, nil
}

// Save persists a generated proposal as a new draft version, optionally
// publishing it in the same transaction.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.TimetableVersion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := s.proposals.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"algorithm":    "grid_walk_v1",
		"blocks":       len(proposal.Blocks),
		"totalHours":   proposal.Summary.TotalHours,
		"shortfalls":   len(proposal.Shortfalls),
		"weeksPerTerm": proposal.WeeksPerTerm,
		"generatedAt":  proposal.RequestedAt,
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
		return nil, err
	}

	version := &models.TimetableVersion{
		Status: models.TimetableStatusDraft,
		Meta:   types.JSONText(metaBytes),
	}
	if err = s.store.CreateVersion(ctx, tx, version); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable version")
		return nil, err
	}
	if err = s.store.InsertBlocks(ctx, tx, version.ID, proposal.Blocks); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable blocks")
		return nil, err
	}

	if req.Publish {
		if err = s.store.Publish(ctx, tx, version.ID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
			return nil, err
		}
		version.Status = models.TimetableStatusPublished
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}

	s.proposals.Delete(req.ProposalID)
	if req.Publish && s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, dashboardCachePattern); cacheErr != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(cacheErr))
		}
	}

	s.logger.Info("timetable saved",
		zap.String("versionId", version.ID),
		zap.Int("version", version.Version),
		zap.Bool("published", req.Publish),
	)
	return version, nil
}

// Current returns the published timetable and its blocks.
func (s *TimetableService) Current(ctx context.Context) (*dto.TimetableResponse, error) {
	version, err := s.store.FindPublished(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no published timetable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
	}
	blocks, err := s.store.ListBlocks(ctx, version.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable blocks")
	}
	return &dto.TimetableResponse{Version: *version, Blocks: blocks}, nil
}

// Version returns one stored timetable with its blocks.
func (s *TimetableService) Version(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	version, err := s.store.FindVersion(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	blocks, err := s.store.ListBlocks(ctx, version.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable blocks")
	}
	return &dto.TimetableResponse{Version: *version, Blocks: blocks}, nil
}

// Versions lists stored timetables, newest first.
func (s *TimetableService) Versions(ctx context.Context) ([]models.TimetableVersion, error) {
	versions, err := s.store.ListVersions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable versions")
	}
	return versions, nil
}

// Delete removes a draft timetable version.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	version, err := s.store.FindVersion(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	if version.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.store.DeleteVersion(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable version")
	}
	return nil
}

// --- Proposal cache ---

type timetableProposal struct {
	ID           string
	Blocks       []models.ScheduleBlock
	Summary      allocator.Summary
	Shortfalls   []allocator.Shortfall
	WeeksPerTerm int
	RequestedAt  time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
