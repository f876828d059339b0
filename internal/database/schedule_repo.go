package database

import (
	"database/sql"
	"fmt"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/contract"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/entity"
)

type scheduleRepo struct {
	db dbConn
}

func newScheduleRepo(db dbConn) contract.ScheduleRepo {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Insert(slot *entity.ScheduleSlot) (bool, error) {
	query := `
		INSERT INTO mod_schedules (user_id, weekday, hour, minute, timezone)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, weekday, hour, minute) DO NOTHING
	`

	result, err := r.db.Exec(query,
		slot.UserID,
		slot.Weekday,
		slot.Hour,
		slot.Minute,
		slot.Timezone,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert schedule slot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}

	slot.ID = id
	return true, nil
}

func (r *scheduleRepo) Delete(userID string, weekday, hour, minute int) (bool, error) {
	query := `
		DELETE FROM mod_schedules
		WHERE user_id = ? AND weekday = ? AND hour = ? AND minute = ?
	`

	result, err := r.db.Exec(query, userID, weekday, hour, minute)
	if err != nil {
		return false, fmt.Errorf("failed to delete schedule slot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *scheduleRepo) ListByUser(userID string) ([]*entity.ScheduleSlot, error) {
	query := `
		SELECT id, user_id, weekday, hour, minute, timezone, created_at
		FROM mod_schedules
		WHERE user_id = ?
		ORDER BY weekday, hour, minute
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule slots: %w", err)
	}
	defer rows.Close()

	var slots []*entity.ScheduleSlot
	for rows.Next() {
		slot := &entity.ScheduleSlot{}
		err := rows.Scan(
			&slot.ID,
			&slot.UserID,
			&slot.Weekday,
			&slot.Hour,
			&slot.Minute,
			&slot.Timezone,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func (r *scheduleRepo) DeleteAllByUser(userID string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM mod_schedules WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

func (r *scheduleRepo) HasAny(userID string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM mod_schedules WHERE user_id = ? LIMIT 1`, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check schedule: %w", err)
	}

	return true, nil
}
