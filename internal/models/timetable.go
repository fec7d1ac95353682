package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimeSlot is one teaching period of the weekly grid.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

/// ScheduleBlock is a single allocated period: one course, one room, one cell of the
// weekly grid. Blocks are immutable once produced by an allocation run.
type ScheduleBlock struct {
	ID          string     `db:"id" json:"id"`
	Day         string     `db:"day" json:"day"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	CourseID    string     `db:"course_id" json:"course_id"`
	CourseName  string     `db:"course_name" json:"course_name"`
	Type        CourseType `db:"type" json:"type"`
	RoomName    string     `db:"room_name" json:"room_name"`
	ProgramName string     `db:"program_name" json:"program_name"`
	Term        int        `db:"term" json:"term"`

	// Persistence-only fields; empty on freshly generated blocks.
	VersionID string `db:"version_id" json:"-"`
	Position  int    `db:"position" json:"-"`
}

// TimetableStatus represents lifecycle phases for stored timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// TimetableVersion is a stored run of the allocator. At most one version is
// published at a time; publishing archives the previous one.
type TimetableVersion struct {
	ID        string          `db:"id" json:"id"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination normalises page and size the same way the repositories do.
func NewPagination(page, pageSize, total int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
