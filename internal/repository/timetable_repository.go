package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sigha-api/internal/models"
)

// TimetableRepository persists versioned allocation runs and their blocks.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersion inserts a timetable assigning the next version number.
func (r *TimetableRepository) CreateVersion(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	if version == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.Status == "" {
		version.Status = models.TimetableStatusDraft
	}
	if len(version.Meta) == 0 {
		version.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	version.CreatedAt = now
	version.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions`
	if err := sqlx.GetContext(ctx, target, &version.Version, nextVersionQuery); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `INSERT INTO timetable_versions (id, version, status, meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := target.ExecContext(ctx, insertQuery,
		version.ID, version.Version, version.Status, version.Meta, version.CreatedAt, version.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert timetable version: %w", err)
	}
	return nil
}

// InsertBlocks stores the blocks of one run, preserving insertion order via the
// position column.
func (r *TimetableRepository) InsertBlocks(ctx context.Context, exec sqlx.ExtContext, versionID string, blocks []models.ScheduleBlock) error {
	target := r.exec(exec)
	const query = `INSERT INTO timetable_blocks
		(id, version_id, position, day, start_time, end_time, course_id, course_name, type, room_name, program_name, term)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for i, block := range blocks {
		if _, err := target.ExecContext(ctx, query,
			block.ID, versionID, i, block.Day, block.StartTime, block.EndTime,
			block.CourseID, block.CourseName, block.Type, block.RoomName, block.ProgramName, block.Term,
		); err != nil {
			return fmt.Errorf("insert timetable block %s: %w", block.ID, err)
		}
	}
	return nil
}

// Publish marks a version as the single published timetable, archiving the
// previous one inside the same statement set.
func (r *TimetableRepository) Publish(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	const archiveQuery = `UPDATE timetable_versions SET status = $1, updated_at = $2 WHERE status = $3 AND id <> $4`
	if _, err := target.ExecContext(ctx, archiveQuery,
		models.TimetableStatusArchived, now, models.TimetableStatusPublished, id,
	); err != nil {
		return fmt.Errorf("archive published timetable: %w", err)
	}

	const publishQuery = `UPDATE timetable_versions SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := target.ExecContext(ctx, publishQuery, models.TimetableStatusPublished, now, id)
	if err != nil {
		return fmt.Errorf("publish timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish timetable: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindVersion returns a stored timetable by id.
func (r *TimetableRepository) FindVersion(ctx context.Context, id string) (*models.TimetableVersion, error) {
	const query = `SELECT id, version, status, meta, created_at, updated_at FROM timetable_versions WHERE id = $1`
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, id); err != nil {
		return nil, err
	}
	return &version, nil
}

// FindPublished returns the currently published timetable, if any.
func (r *TimetableRepository) FindPublished(ctx context.Context) (*models.TimetableVersion, error) {
	const query = `SELECT id, version, status, meta, created_at, updated_at FROM timetable_versions WHERE status = $1 ORDER BY version DESC LIMIT 1`
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, models.TimetableStatusPublished); err != nil {
		return nil, err
	}
	return &version, nil
}

// ListVersions returns stored timetables, newest first.
func (r *TimetableRepository) ListVersions(ctx context.Context) ([]models.TimetableVersion, error) {
	const query = `SELECT id, version, status, meta, created_at, updated_at FROM timetable_versions ORDER BY version DESC`
	var versions []models.TimetableVersion
	if err := r.db.SelectContext(ctx, &versions, query); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	return versions, nil
}

// ListBlocks returns a version's blocks in their original insertion order.
func (r *TimetableRepository) ListBlocks(ctx context.Context, versionID string) ([]models.ScheduleBlock, error) {
	const query = `SELECT id, version_id, position, day, start_time, end_time, course_id, course_name, type, room_name, program_name, term
		FROM timetable_blocks WHERE version_id = $1 ORDER BY position ASC`
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query, versionID); err != nil {
		return nil, fmt.Errorf("list timetable blocks: %w", err)
	}
	return blocks, nil
}

// DeleteVersion removes a timetable version and its blocks.
func (r *TimetableRepository) DeleteVersion(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM timetable_blocks WHERE version_id = $1", id); err != nil {
		return fmt.Errorf("delete timetable blocks: %w", err)
	}
	result, err := r.db.ExecContext(ctx, "DELETE FROM timetable_versions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete timetable version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete timetable version: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
