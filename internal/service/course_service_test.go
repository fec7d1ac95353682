package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

func TestCourseServiceCreate(t *testing.T) {
	repo := &courseRepoStub{}
	service := newCourseServiceFixture(repo)

	course, err := service.Create(context.Background(), dto.CreateCourseRequest{
		Name:       "Programación Avanzada",
		Type:       "hybrid",
		ProgramID:  "apsti",
		Term:       3,
		TotalHours: 110,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, models.CourseTypeHybrid, course.Type)
	assert.Len(t, repo.items, 1)
}

func TestCourseServiceCreateRejectsUnknownProgram(t *testing.T) {
	service := newCourseServiceFixture(&courseRepoStub{})

	_, err := service.Create(context.Background(), dto.CreateCourseRequest{
		Name:       "Curso Fantasma",
		Type:       "theory",
		ProgramID:  "medicina",
		Term:       1,
		TotalHours: 110,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateRejectsUnofferedTerm(t *testing.T) {
	service := newCourseServiceFixture(&courseRepoStub{})

	_, err := service.Create(context.Background(), dto.CreateCourseRequest{
		Name:       "Curso Par",
		Type:       "theory",
		ProgramID:  "apsti",
		Term:       2,
		TotalHours: 110,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateRejectsInvalidType(t *testing.T) {
	service := newCourseServiceFixture(&courseRepoStub{})

	_, err := service.Create(context.Background(), dto.CreateCourseRequest{
		Name:       "Curso Raro",
		Type:       "seminar",
		ProgramID:  "apsti",
		Term:       1,
		TotalHours: 110,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateMissingCourse(t *testing.T) {
	service := newCourseServiceFixture(&courseRepoStub{})

	_, err := service.Update(context.Background(), "missing", dto.UpdateCourseRequest{
		Name:       "Curso Editado",
		Type:       "theory",
		ProgramID:  "apsti",
		Term:       1,
		TotalHours: 110,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceSeedDefaultsOnlyWhenEmpty(t *testing.T) {
	repo := &courseRepoStub{}
	service := newCourseServiceFixture(repo)

	inserted, err := service.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, inserted)
	assert.Len(t, repo.items, 30)

	inserted, err = service.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Zero(t, inserted, "seed must be a no-op on a populated catalog")
	assert.Len(t, repo.items, 30)
}

func TestCourseServiceGetAndDelete(t *testing.T) {
	repo := &courseRepoStub{}
	service := newCourseServiceFixture(repo)

	created, err := service.Create(context.Background(), dto.CreateCourseRequest{
		Name:       "Redes de Computadoras",
		Type:       "practice",
		ProgramID:  "apsti",
		Term:       5,
		TotalHours: 110,
	})
	require.NoError(t, err)

	found, err := service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, found.Name)

	require.NoError(t, service.Delete(context.Background(), created.ID))
	_, err = service.Get(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func newCourseServiceFixture(repo courseRepository) *CourseService {
	return NewCourseService(repo, nil, validator.New(), zap.NewNop())
}

type courseRepoStub struct {
	items []models.Course
}

func (s *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	return s.items, len(s.items), nil
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	for _, item := range s.items {
		if item.ID == id {
			course := item
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = fmt.Sprintf("course-%d", len(s.items)+1)
	s.items = append(s.items, *course)
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	for idx := range s.items {
		if s.items[idx].ID == course.ID {
			s.items[idx] = *course
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *courseRepoStub) Delete(ctx context.Context, id string) error {
	for idx, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *courseRepoStub) CountAll(ctx context.Context) (int, error) {
	return len(s.items), nil
}

func (s *courseRepoStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, courses []models.Course) error {
	for i := range courses {
		courses[i].ID = fmt.Sprintf("seed-%d", len(s.items)+1)
		s.items = append(s.items, courses[i])
	}
	return nil
}
