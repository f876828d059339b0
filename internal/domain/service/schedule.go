package service

import (
	"fmt"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/contract"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/entity"
	"go.uber.org/zap"
)

// AddSlotStatus is the outcome of adding a schedule slot.
type AddSlotStatus int

const (
	SlotAdded AddSlotStatus = iota
	SlotAlreadyExists
	SlotInvalidTimezone
	SlotInvalidTime
)

// ScheduleService owns recurring weekly availability slots. It is the sole
// writer of schedule rows.
type ScheduleService struct {
	dm  contract.DataManager
	log *zap.Logger
}

func newScheduleService(dm contract.DataManager, log *zap.Logger) *ScheduleService {
	return &ScheduleService{dm: dm, log: log}
}

// AddSlot adds a recurring slot. Adding an existing (user, weekday, hour,
// minute) tuple is a no-op reported as SlotAlreadyExists; the timezone is
// not part of the uniqueness key. The command layer pre-validates ranges,
// but the store rejects out-of-range values anyway.
func (s *ScheduleService) AddSlot(userID string, weekday, hour, minute int, tzName string) (AddSlotStatus, error) {
	if weekday < 0 || weekday > 6 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return SlotInvalidTime, nil
	}
	if _, err := time.LoadLocation(tzName); err != nil {
		return SlotInvalidTimezone, nil
	}

	slot := &entity.ScheduleSlot{
		UserID:   userID,
		Weekday:  weekday,
		Hour:     hour,
		Minute:   minute,
		Timezone: tzName,
	}

	inserted, err := s.dm.Schedule().Insert(slot)
	if err != nil {
		return SlotAdded, fmt.Errorf("failed to add schedule slot: %w", err)
	}
	if !inserted {
		return SlotAlreadyExists, nil
	}

	s.log.Info("schedule slot added",
		zap.String("user_id", userID),
		zap.Int("weekday", weekday),
		zap.Int("hour", hour),
		zap.Int("minute", minute),
		zap.String("timezone", tzName),
	)
	return SlotAdded, nil
}

// RemoveSlot deletes one slot; false means it was not found.
func (s *ScheduleService) RemoveSlot(userID string, weekday, hour, minute int) (bool, error) {
	removed, err := s.dm.Schedule().Delete(userID, weekday, hour, minute)
	if err != nil {
		return false, fmt.Errorf("failed to remove schedule slot: %w", err)
	}
	return removed, nil
}

// ListSlots returns a moderator's slots ordered by (weekday, hour, minute).
func (s *ScheduleService) ListSlots(userID string) ([]*entity.ScheduleSlot, error) {
	return s.dm.Schedule().ListByUser(userID)
}

// ClearAll removes every slot of a moderator and returns how many were
// removed.
func (s *ScheduleService) ClearAll(userID string) (int64, error) {
	removed, err := s.dm.Schedule().DeleteAllByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear schedule: %w", err)
	}
	if removed > 0 {
		s.log.Info("schedule cleared",
			zap.String("user_id", userID),
			zap.Int64("slots_removed", removed),
		)
	}
	return removed, nil
}

// HasAnySlot reports whether the moderator has any slot configured.
func (s *ScheduleService) HasAnySlot(userID string) (bool, error) {
	return s.dm.Schedule().HasAny(userID)
}
