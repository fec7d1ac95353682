package models

// RoomType distinguishes theory classrooms from practice labs.
type RoomType string

const (
	RoomTypeClassroom RoomType = "classroom"
	RoomTypeLab       RoomType = "lab"
)

// Opposite returns the other room type, used by the hybrid fallback.
func (t RoomType) Opposite() RoomType {
	if t == RoomTypeLab {
		return RoomTypeClassroom
	}
	return RoomTypeLab
}

// Room is a physical teaching space. Static inventory, never mutated by the allocator.
type Room struct {
	ID       string   `db:"id" json:"id"`
	Name     string   `db:"name" json:"name"`
	Type     RoomType `db:"type" json:"type"`
	Capacity int      `db:"capacity" json:"capacity"`
	Position int      `db:"position" json:"-"`
}
