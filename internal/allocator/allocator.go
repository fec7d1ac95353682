// Package allocator implements the weekly timetable engine: a deterministic,
// single-pass grid walk that assigns catalog courses to (day, slot, room) cells
// while honouring room modalities and favouring schedule continuity. It is a
// pure function of its input; every run gets fresh state and no I/O happens here.
package allocator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/sigha-api/internal/models"
)

// Input carries everything one allocation run consumes. Courses may be empty,
// in which case the built-in default catalog is substituted. Rooms, days and
// slots are static configuration and are never mutated.
type Input struct {
	Courses      []models.Course
	Programs     []models.Program
	Rooms        []models.Room
	Days         []string
	Slots        []models.TimeSlot
	WeeksPerTerm int
}

func (in Input) withDefaults() Input {
	if len(in.Courses) == 0 {
		in.Courses = DefaultCatalog()
	}
	if len(in.Programs) == 0 {
		in.Programs = DefaultPrograms()
	}
	if len(in.Rooms) == 0 {
		in.Rooms = DefaultRooms()
	}
	if len(in.Days) == 0 {
		in.Days = DefaultDays()
	}
	if len(in.Slots) == 0 {
		in.Slots = DefaultSlots()
	}
	if in.WeeksPerTerm <= 0 {
		in.WeeksPerTerm = DefaultWeeksPerTerm
	}
	return in
}

// TargetWeeklyHours derives the weekly quota for a course: ceil(total / weeks).
func TargetWeeklyHours(totalHours, weeksPerTerm int) int {
	if weeksPerTerm <= 0 {
		weeksPerTerm = DefaultWeeksPerTerm
	}
	if totalHours <= 0 {
		return 0
	}
	return (totalHours + weeksPerTerm - 1) / weeksPerTerm
}

// courseProgress is the run-scoped view of a catalog course. Catalog values are
// copied in, never mutated, so concurrent runs stay isolated.
type courseProgress struct {
	models.Course

	target   int
	assigned int

	// room-type tallies for hybrid balancing, continuity placements included
	labHours       int
	classroomHours int
}

// group is the unit of demand: one (program, term) cohort with its courses in
// catalog order.
type group struct {
	programID   string
	programName string
	term        int
	courses     []*courseProgress
}

func (g *group) active() []*courseProgress {
	var out []*courseProgress
	for _, c := range g.courses {
		if c.assigned < c.target {
			out = append(out, c)
		}
	}
	return out
}

// cell addresses one position of the weekly grid.
type cell struct {
	Day  int
	Slot int
}

// groupCell addresses a group's placement inside a cell, for continuity lookups.
type groupCell struct {
	Day   int
	Slot  int
	Group int
}

type placement struct {
	courseName string
	roomID     string
}

type run struct {
	in       Input
	groups   []*group
	occupied map[cell]map[string]struct{}
	placed   map[groupCell]placement
	rooms    map[string]models.Room
	blocks   []models.ScheduleBlock
	nextID   int
}

// Generate runs a full grid walk and returns the produced blocks in insertion
// order (day-major, slot-minor, group-minor). Courses the grid cannot satisfy
// simply end the run short of their weekly target; that is not an error.
func Generate(in Input) []models.ScheduleBlock {
	in = in.withDefaults()

	r := &run{
		in:       in,
		groups:   deriveGroups(in),
		occupied: make(map[cell]map[string]struct{}),
		placed:   make(map[groupCell]placement),
		rooms:    make(map[string]models.Room, len(in.Rooms)),
		nextID:   1,
	}
	for _, room := range in.Rooms {
		r.rooms[room.ID] = room
	}

	// Rotation advances per half-day block so a course holds two consecutive
	// periods before the candidate index moves on.
	halfDayBlocks := (len(in.Slots) + 1) / 2

	for dayIdx := range in.Days {
		for slotIdx := range in.Slots {
			for groupIdx, g := range r.groups {
				active := g.active()
				if len(active) == 0 {
					continue
				}
				idx := (dayIdx*halfDayBlocks + slotIdx/2 + groupIdx) % len(active)
				candidate := active[idx]

				if slotIdx > 0 && r.tryContinuity(dayIdx, slotIdx, groupIdx, g, candidate) {
					continue
				}
				r.allocate(dayIdx, slotIdx, groupIdx, g, candidate)
			}
		}
	}
	return r.blocks
}

// deriveGroups partitions the catalog by (program, term), programs in input
// order and terms ascending. Courses referencing an unknown program id are
// dropped here; validation belongs to the data-entry boundary.
func deriveGroups(in Input) []*group {
	var groups []*group
	for _, program := range in.Programs {
		terms := termsFor(in.Courses, program.ID)
		for _, term := range terms {
			g := &group{programID: program.ID, programName: program.Name, term: term}
			for _, course := range in.Courses {
				if course.ProgramID != program.ID || course.Term != term {
					continue
				}
				g.courses = append(g.courses, &courseProgress{
					Course: course,
					target: TargetWeeklyHours(course.TotalHours, in.WeeksPerTerm),
				})
			}
			if len(g.courses) > 0 {
				groups = append(groups, g)
			}
		}
	}
	return groups
}

func termsFor(courses []models.Course, programID string) []int {
	var terms []int
	for _, course := range courses {
		if course.ProgramID != programID {
			continue
		}
		pos := 0
		for pos < len(terms) && terms[pos] < course.Term {
			pos++
		}
		if pos < len(terms) && terms[pos] == course.Term {
			continue
		}
		terms = append(terms, 0)
		copy(terms[pos+1:], terms[pos:])
		terms[pos] = course.Term
	}
	return terms
}

// tryContinuity keeps two consecutive periods of the same course in the same
// room. Only the exact previous slot of the same day is considered.
func (r *run) tryContinuity(dayIdx, slotIdx, groupIdx int, g *group, candidate *courseProgress) bool {
	prev, ok := r.placed[groupCell{Day: dayIdx, Slot: slotIdx - 1, Group: groupIdx}]
	if !ok || prev.courseName != candidate.Name {
		return false
	}
	if !r.roomFree(dayIdx, slotIdx, prev.roomID) {
		return false
	}
	room, ok := r.rooms[prev.roomID]
	if !ok {
		return false
	}
	r.book(dayIdx, slotIdx, groupIdx, g, candidate, room)
	return true
}

// allocate resolves the required room type for the candidate and books the
// best free room, or leaves the cell empty for this group when none fits.
func (r *run) allocate(dayIdx, slotIdx, groupIdx int, g *group, candidate *courseProgress) {
	var required models.RoomType
	switch candidate.Type {
	case models.CourseTypeTheory:
		required = models.RoomTypeClassroom
	case models.CourseTypePractice:
		required = models.RoomTypeLab
	default:
		// Hybrid: keep the lab/theory split roughly even over the week.
		if candidate.labHours <= candidate.classroomHours {
			required = models.RoomTypeLab
		} else {
			required = models.RoomTypeClassroom
		}
	}

	available := r.freeRooms(dayIdx, slotIdx, required)
	if len(available) == 0 && candidate.Type == models.CourseTypeHybrid {
		available = r.freeRooms(dayIdx, slotIdx, required.Opposite())
	}
	if len(available) == 0 {
		return
	}

	// Soft preference: a room id ending with the group's term keeps a cohort in
	// a consistent room. Falls through to the first free room otherwise.
	selected := available[0]
	suffix := strconv.Itoa(g.term)
	for _, room := range available {
		if strings.HasSuffix(room.ID, suffix) {
			selected = room
			break
		}
	}
	r.book(dayIdx, slotIdx, groupIdx, g, candidate, selected)
}

func (r *run) book(dayIdx, slotIdx, groupIdx int, g *group, candidate *courseProgress, room models.Room) {
	key := cell{Day: dayIdx, Slot: slotIdx}
	if r.occupied[key] == nil {
		r.occupied[key] = make(map[string]struct{})
	}
	r.occupied[key][room.ID] = struct{}{}
	r.placed[groupCell{Day: dayIdx, Slot: slotIdx, Group: groupIdx}] = placement{
		courseName: candidate.Name,
		roomID:     room.ID,
	}

	candidate.assigned++
	if room.Type == models.RoomTypeLab {
		candidate.labHours++
	} else {
		candidate.classroomHours++
	}

	courseID := candidate.ID
	if courseID == "" {
		courseID = fmt.Sprintf("%s-%d-%s", g.programID, g.term, candidate.Name)
	}
	slot := r.in.Slots[slotIdx]
	r.blocks = append(r.blocks, models.ScheduleBlock{
		ID:          fmt.Sprintf("blk-%d", r.nextID),
		Day:         r.in.Days[dayIdx],
		StartTime:   slot.Start,
		EndTime:     slot.End,
		CourseID:    courseID,
		CourseName:  candidate.Name,
		Type:        candidate.Type,
		RoomName:    room.Name,
		ProgramName: g.programName,
		Term:        g.term,
	})
	r.nextID++
}

func (r *run) roomFree(dayIdx, slotIdx int, roomID string) bool {
	booked, ok := r.occupied[cell{Day: dayIdx, Slot: slotIdx}]
	if !ok {
		return true
	}
	_, taken := booked[roomID]
	return !taken
}

// freeRooms returns rooms of the requested type still free in the cell,
// preserving inventory order.
func (r *run) freeRooms(dayIdx, slotIdx int, kind models.RoomType) []models.Room {
	var out []models.Room
	for _, room := range r.in.Rooms {
		if room.Type != kind {
			continue
		}
		if r.roomFree(dayIdx, slotIdx, room.ID) {
			out = append(out, room)
		}
	}
	return out
}
