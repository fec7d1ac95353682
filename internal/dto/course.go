package dto

import "github.com/noah-isme/sigha-api/internal/models"

// CreateCourseRequest adds a teaching unit to the catalog.
type CreateCourseRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=120"`
	Type       string `json:"type" validate:"required,oneof=theory practice hybrid"`
	ProgramID  string `json:"program_id" validate:"required"`
	Term       int    `json:"term" validate:"required,min=1,max=10"`
	TotalHours int    `json:"total_hours" validate:"required,min=1,max=1000"`
}

// UpdateCourseRequest replaces the editable fields of a catalog course.
type UpdateCourseRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=120"`
	Type       string `json:"type" validate:"required,oneof=theory practice hybrid"`
	ProgramID  string `json:"program_id" validate:"required"`
	Term       int    `json:"term" validate:"required,min=1,max=10"`
	TotalHours int    `json:"total_hours" validate:"required,min=1,max=1000"`
}

// CourseListQuery filters catalog listings.
type CourseListQuery struct {
	ProgramID string `form:"programId"`
	Term      int    `form:"term"`
	Type      string `form:"type"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"limit"`
	SortBy    string `form:"sort"`
	SortOrder string `form:"order"`
}

// Filter converts the query into the repository filter.
func (q CourseListQuery) Filter() models.CourseFilter {
	return models.CourseFilter{
		ProgramID: q.ProgramID,
		Term:      q.Term,
		Type:      models.CourseType(q.Type),
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}
