package database

import (
	"context"
	"fmt"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/contract"
)

// instance implements the DataManager interface
type instance struct {
	db           *DB
	shiftRepo    contract.ShiftRepo
	scheduleRepo contract.ScheduleRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	return &instance{
		db:           db,
		shiftRepo:    newShiftRepo(db.conn),
		scheduleRepo: newScheduleRepo(db.conn),
	}
}

// repoInstancesWithConn creates repository instances with a custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		shiftRepo:    newShiftRepo(db),
		scheduleRepo: newScheduleRepo(db),
	}
}

// Shift returns the shift repository
func (i *instance) Shift() contract.ShiftRepo {
	return i.shiftRepo
}

// Schedule returns the schedule slot repository
func (i *instance) Schedule() contract.ScheduleRepo {
	return i.scheduleRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
