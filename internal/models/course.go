package models

import "time"

// CourseType describes the teaching modality of a course.
type CourseType string

const (
	CourseTypeTheory   CourseType = "theory"
	CourseTypePractice CourseType = "practice"
	CourseTypeHybrid   CourseType = "hybrid"
)

// Valid reports whether the modality is one of the supported values.
func (t CourseType) Valid() bool {
	switch t {
	case CourseTypeTheory, CourseTypePractice, CourseTypeHybrid:
		return true
	}
	return false
}

// Course is a teaching unit in the catalog, owned by a program and an academic term.
type Course struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Type       CourseType `db:"type" json:"type"`
	ProgramID  string     `db:"program_id" json:"program_id"`
	Term       int        `db:"term" json:"term"`
	TotalHours int        `db:"total_hours" json:"total_hours"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures supported filters for listing catalog courses.
type CourseFilter struct {
	ProgramID string
	Term      int
	Type      CourseType
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Program groups courses per study track; its ordered terms drive group derivation.
type Program struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Terms []int  `json:"terms"`
}
