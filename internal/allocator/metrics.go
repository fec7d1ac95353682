package allocator

import (
	"strconv"

	"github.com/noah-isme/sigha-api/internal/models"
)

// Summary is a read-only aggregation over a finished schedule. Block count is a
// proxy for delivered weekly teaching hours.
type Summary struct {
	TotalHours int            `json:"total_hours"`
	ByRoom     map[string]int `json:"by_room"`
	ByProgram  map[string]int `json:"by_program"`
}

// Summarize derives occupancy metrics from the produced blocks. Pure
// aggregation; the input is not mutated.
func Summarize(blocks []models.ScheduleBlock) Summary {
	summary := Summary{
		TotalHours: len(blocks),
		ByRoom:     make(map[string]int),
		ByProgram:  make(map[string]int),
	}
	for _, block := range blocks {
		summary.ByRoom[block.RoomName]++
		summary.ByProgram[block.ProgramName]++
	}
	return summary
}

// Shortfall reports a course whose weekly target the grid could not satisfy.
type Shortfall struct {
	CourseID    string `json:"course_id"`
	CourseName  string `json:"course_name"`
	ProgramID   string `json:"program_id"`
	Term        int    `json:"term"`
	Target      int    `json:"target_weekly_hours"`
	Assigned    int    `json:"assigned_hours"`
	MissedHours int    `json:"missed_hours"`
}

// Shortfalls compares produced blocks against each course's weekly target.
// Under-allocation is an observable property of the output, never a failure of
// the run itself.
func Shortfalls(in Input, blocks []models.ScheduleBlock) []Shortfall {
	in = in.withDefaults()

	assigned := make(map[string]int)
	for _, block := range blocks {
		assigned[block.CourseID]++
	}

	var out []Shortfall
	for _, g := range deriveGroups(in) {
		for _, course := range g.courses {
			courseID := course.ID
			if courseID == "" {
				courseID = g.programID + "-" + strconv.Itoa(g.term) + "-" + course.Name
			}
			if got := assigned[courseID]; got < course.target {
				out = append(out, Shortfall{
					CourseID:    courseID,
					CourseName:  course.Name,
					ProgramID:   g.programID,
					Term:        g.term,
					Target:      course.target,
					Assigned:    got,
					MissedHours: course.target - got,
				})
			}
		}
	}
	return out
}
