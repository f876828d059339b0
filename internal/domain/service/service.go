package service

import (
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/contract"
	"go.uber.org/zap"
)

// FairnessConfig carries the claim-throttle settings. MaxHours is the rolling
// 7-day claimed-hour cap; LockWindow is how close to a shift's start a heavy
// moderator may still claim it.
type FairnessConfig struct {
	MaxHours   float64
	LockWindow time.Duration
}

type Instance struct {
	Shift    *ShiftService
	Schedule *ScheduleService
}

func NewInstance(dm contract.DataManager, fairness FairnessConfig, log *zap.Logger) *Instance {
	return &Instance{
		Shift:    newShiftService(dm, fairness, log),
		Schedule: newScheduleService(dm, log),
	}
}
