package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sigha-api/internal/models"
)

// RoomRepository reads the physical room inventory. Rooms are static
// configuration maintained out of band; the API never mutates them.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new repository instance.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListOrdered returns every room in fixed inventory order. Allocation depends
// on this order being stable across runs.
func (r *RoomRepository) ListOrdered(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, type, capacity, position FROM rooms ORDER BY position ASC, id ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
