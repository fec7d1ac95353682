package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sigha-api/internal/models"
)

func TestSummarize(t *testing.T) {
	blocks := []models.ScheduleBlock{
		{RoomName: "Aula 101 (Teoría)", ProgramName: "APSTI"},
		{RoomName: "Aula 101 (Teoría)", ProgramName: "APSTI"},
		{RoomName: "Lab Computación 1", ProgramName: "CONTABILIDAD"},
	}

	summary := Summarize(blocks)
	assert.Equal(t, 3, summary.TotalHours)
	assert.Equal(t, 2, summary.ByRoom["Aula 101 (Teoría)"])
	assert.Equal(t, 1, summary.ByRoom["Lab Computación 1"])
	assert.Equal(t, 2, summary.ByProgram["APSTI"])
	assert.Equal(t, 1, summary.ByProgram["CONTABILIDAD"])
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.TotalHours)
	assert.Empty(t, summary.ByRoom)
	assert.Empty(t, summary.ByProgram)
}

func TestShortfallsReportUnderAllocation(t *testing.T) {
	// One day, one slot, one classroom: a 110-hour course can receive at most a
	// single weekly period, leaving six of its seven target hours unassigned.
	in := Input{
		Courses: []models.Course{
			{ID: "c1", Name: "Matemática Aplicada", Type: models.CourseTypeTheory, ProgramID: "apsti", Term: 1, TotalHours: 110},
		},
		Programs: []models.Program{{ID: "apsti", Name: "APSTI"}},
		Rooms:    []models.Room{{ID: "t1", Name: "Aula 101", Type: models.RoomTypeClassroom, Capacity: 30}},
		Days:     []string{"Lunes"},
		Slots:    []models.TimeSlot{{Start: "08:00", End: "08:45"}},
	}

	blocks := Generate(in)
	require.Len(t, blocks, 1)

	shortfalls := Shortfalls(in, blocks)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, "c1", shortfalls[0].CourseID)
	assert.Equal(t, 7, shortfalls[0].Target)
	assert.Equal(t, 1, shortfalls[0].Assigned)
	assert.Equal(t, 6, shortfalls[0].MissedHours)
}

func TestShortfallsEmptyWhenTargetsMet(t *testing.T) {
	in := Input{
		Courses:  scenarioCatalog(),
		Programs: []models.Program{{ID: "apsti", Name: "APSTI"}, {ID: "contabilidad", Name: "CONTABILIDAD"}},
	}
	blocks := Generate(in)
	assert.Empty(t, Shortfalls(in, blocks))
}
