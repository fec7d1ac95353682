package dto

import (
	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/models"
)

// GenerateTimetableRequest starts an allocation run over the stored catalog.
// WeeksPerTerm overrides the configured term length for what-if runs.
type GenerateTimetableRequest struct {
	WeeksPerTerm int `json:"weeksPerTerm" validate:"omitempty,min=1,max=52"`
}

// GenerateTimetableResponse carries one proposal: the produced blocks, their
// aggregation, and every course the grid could not fully satisfy.
type GenerateTimetableResponse struct {
	ProposalID string                 `json:"proposalId"`
	Blocks     []models.ScheduleBlock `json:"blocks"`
	Summary    allocator.Summary      `json:"summary"`
	Shortfalls []allocator.Shortfall  `json:"shortfalls,omitempty"`
}

// SaveTimetableRequest persists a held proposal as a timetable version.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// TimetableResponse is a stored timetable with its blocks.
type TimetableResponse struct {
	Version models.TimetableVersion `json:"version"`
	Blocks  []models.ScheduleBlock  `json:"blocks"`
}

// DashboardMetricsResponse is the cached occupancy view over the published
// timetable.
type DashboardMetricsResponse struct {
	Version int               `json:"version"`
	Summary allocator.Summary `json:"summary"`
}
