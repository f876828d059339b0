package service

import (
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain"
)

// RollingClaimedHours is the single fairness signal: the sum of
// duration_hours over non-cancelled shifts claimed by the moderator whose
// start is within the rolling window ending at asOf. Shifts with no
// scheduled start always count; they never age out of the window.
func (s *ShiftService) RollingClaimedHours(userID string, asOf time.Time) (float64, error) {
	return s.dm.Shift().ClaimedHoursSince(userID, asOf.Add(-domain.RollingWindow))
}

// claimEligible decides whether a claim goes through given the claimant's
// rolling hours. Generic shifts (no start) are never capped: without a start
// there is no time-until-start to measure the lock window against. Once a
// shift is inside the lock window, anyone may claim it regardless of hours.
func claimEligible(start *time.Time, totalHours float64, now time.Time, cfg FairnessConfig) bool {
	if start == nil {
		return true
	}
	if totalHours < cfg.MaxHours {
		return true
	}
	return start.Sub(now) <= cfg.LockWindow
}
