package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, courses []models.Course) error
}

// CourseService manages the course catalog feeding the allocation engine.
type CourseService struct {
	repo      courseRepository
	programs  []models.Program
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, programs []models.Program, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(programs) == 0 {
		programs = allocator.DefaultPrograms()
	}
	return &CourseService{repo: repo, programs: programs, validator: validate, logger: logger}
}

// List returns catalog courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, *models.Pagination, error) {
	filter := query.Filter()
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown course type %q", filter.Type))
	}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)
	return courses, pagination, nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create validates and stores a new catalog course.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.checkProgramTerm(req.ProgramID, req.Term); err != nil {
		return nil, err
	}
	course := &models.Course{
		Name:       req.Name,
		Type:       models.CourseType(req.Type),
		ProgramID:  req.ProgramID,
		Term:       req.Term,
		TotalHours: req.TotalHours,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("courseId", course.ID), zap.String("programId", course.ProgramID))
	return course, nil
}

// Update replaces the editable fields of a course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.checkProgramTerm(req.ProgramID, req.Term); err != nil {
		return nil, err
	}
	course := &models.Course{
		ID:         id,
		Name:       req.Name,
		Type:       models.CourseType(req.Type),
		ProgramID:  req.ProgramID,
		Term:       req.Term,
		TotalHours: req.TotalHours,
	}
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course from the catalog.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

// SeedDefaults loads the built-in catalog when the courses table is empty. It
// returns the number of inserted courses, zero when the catalog already has
// content.
func (s *CourseService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.CountAll(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	if count > 0 {
		return 0, nil
	}
	catalog := allocator.DefaultCatalog()
	if err := s.repo.InsertBatch(ctx, nil, catalog); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed default catalog")
	}
	s.logger.Info("default catalog seeded", zap.Int("courses", len(catalog)))
	return len(catalog), nil
}

func (s *CourseService) checkProgramTerm(programID string, term int) error {
	for _, program := range s.programs {
		if program.ID != programID {
			continue
		}
		for _, t := range program.Terms {
			if t == term {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("term %d is not offered by program %s", term, programID))
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown program %q", programID))
}
