package contract

import (
	"context"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Shift() ShiftRepo
	Schedule() ScheduleRepo
}

// ShiftRepo defines the contract for the shift repository. The shift service
// is the only caller; no other component writes shift rows.
type ShiftRepo interface {
	Create(shift *entity.Shift) error
	GetByMessageRef(messageRef string) (*entity.Shift, error)

	// ClaimIfOpen sets the claimant and claim timestamp only if the shift is
	// still unclaimed and not cancelled. Returns false when the conditional
	// write matched no row, i.e. a concurrent claim or cancellation won.
	ClaimIfOpen(messageRef, userID string, at time.Time) (bool, error)

	MarkCancelled(messageRef string) error
	UpdatePartial(messageRef string, upd entity.ShiftUpdate) error

	// ClaimedHoursSince sums duration_hours over non-cancelled shifts claimed
	// by the user whose start is at or after since, or that have no start.
	ClaimedHoursSince(userID string, since time.Time) (float64, error)

	ClaimedStats(userID string) (count int, totalHours float64, err error)
	ListCancellable(userID string, all bool, limit int) ([]*entity.Shift, error)
	ListEditable(userID string, all bool, limit int) ([]*entity.Shift, error)
}

// ScheduleRepo defines the contract for the schedule slot repository
type ScheduleRepo interface {
	// Insert adds a slot. Returns false without error when the
	// (user, weekday, hour, minute) tuple already exists.
	Insert(slot *entity.ScheduleSlot) (bool, error)

	Delete(userID string, weekday, hour, minute int) (bool, error)
	ListByUser(userID string) ([]*entity.ScheduleSlot, error)
	DeleteAllByUser(userID string) (int64, error)
	HasAny(userID string) (bool, error)
}
