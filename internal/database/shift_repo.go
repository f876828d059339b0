package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/contract"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/entity"
)

type shiftRepo struct {
	db dbConn
}

func newShiftRepo(db dbConn) contract.ShiftRepo {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(shift *entity.Shift) error {
	query := `
		INSERT INTO shifts (message_ref, channel_ref, description, created_by,
			created_at, start_time_utc, duration_hours, assigned_user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		shift.MessageRef,
		shift.ChannelRef,
		shift.Description,
		shift.CreatedBy,
		shift.CreatedAt,
		shift.StartTime,
		shift.DurationHours,
		nullString(shift.AssignedUserID),
	)
	if err != nil {
		return fmt.Errorf("failed to create shift: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	shift.ID = id
	return nil
}

const shiftColumns = `id, message_ref, channel_ref, description, created_by,
	created_at, start_time_utc, duration_hours, assigned_user_id,
	claimed_by, claimed_at, cancelled`

func (r *shiftRepo) GetByMessageRef(messageRef string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE message_ref = ?`

	shift, err := scanShift(r.db.QueryRow(query, messageRef))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}

	return shift, nil
}

// ClaimIfOpen is the decisive write of the claim flow: the condition on
// claimed_by and cancelled makes a lost-update race impossible, so at most
// one claimant ever gets through.
func (r *shiftRepo) ClaimIfOpen(messageRef, userID string, at time.Time) (bool, error) {
	query := `
		UPDATE shifts SET claimed_by = ?, claimed_at = ?
		WHERE message_ref = ? AND claimed_by IS NULL AND cancelled = 0
	`

	result, err := r.db.Exec(query, userID, at, messageRef)
	if err != nil {
		return false, fmt.Errorf("failed to claim shift: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *shiftRepo) MarkCancelled(messageRef string) error {
	query := `UPDATE shifts SET cancelled = 1 WHERE message_ref = ?`

	if _, err := r.db.Exec(query, messageRef); err != nil {
		return fmt.Errorf("failed to cancel shift: %w", err)
	}

	return nil
}

func (r *shiftRepo) UpdatePartial(messageRef string, upd entity.ShiftUpdate) error {
	var sets []string
	var args []interface{}

	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.StartTime != nil {
		sets = append(sets, "start_time_utc = ?")
		args = append(args, *upd.StartTime)
	}
	if upd.DurationHours != nil {
		sets = append(sets, "duration_hours = ?")
		args = append(args, *upd.DurationHours)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, messageRef)
	query := `UPDATE shifts SET ` + strings.Join(sets, ", ") + ` WHERE message_ref = ?`

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}

	return nil
}

func (r *shiftRepo) ClaimedHoursSince(userID string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(duration_hours), 0)
		FROM shifts
		WHERE claimed_by = ? AND cancelled = 0
			AND (start_time_utc IS NULL OR start_time_utc >= ?)
	`

	var total float64
	if err := r.db.QueryRow(query, userID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum claimed hours: %w", err)
	}

	return total, nil
}

func (r *shiftRepo) ClaimedStats(userID string) (int, float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(duration_hours), 0)
		FROM shifts
		WHERE claimed_by = ? AND cancelled = 0
	`

	var count int
	var total float64
	if err := r.db.QueryRow(query, userID).Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to get claimed stats: %w", err)
	}

	return count, total, nil
}

func (r *shiftRepo) ListCancellable(userID string, all bool, limit int) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE cancelled = 0`
	var args []interface{}

	if !all {
		query += ` AND created_by = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	return r.queryShifts(query, args...)
}

func (r *shiftRepo) ListEditable(userID string, all bool, limit int) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE cancelled = 0 AND claimed_by IS NULL`
	var args []interface{}

	if !all {
		query += ` AND created_by = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	return r.queryShifts(query, args...)
}

func (r *shiftRepo) queryShifts(query string, args ...interface{}) ([]*entity.Shift, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []*entity.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShift(row rowScanner) (*entity.Shift, error) {
	shift := &entity.Shift{}
	var startTime, claimedAt sql.NullTime
	var assignedUserID, claimedBy sql.NullString

	err := row.Scan(
		&shift.ID,
		&shift.MessageRef,
		&shift.ChannelRef,
		&shift.Description,
		&shift.CreatedBy,
		&shift.CreatedAt,
		&startTime,
		&shift.DurationHours,
		&assignedUserID,
		&claimedBy,
		&claimedAt,
		&shift.Cancelled,
	)
	if err != nil {
		return nil, err
	}

	if startTime.Valid {
		t := startTime.Time
		shift.StartTime = &t
	}
	if claimedAt.Valid {
		t := claimedAt.Time
		shift.ClaimedAt = &t
	}
	shift.AssignedUserID = assignedUserID.String
	shift.ClaimedBy = claimedBy.String

	return shift, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
