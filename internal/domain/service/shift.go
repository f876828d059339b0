package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/contract"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/entity"
	"go.uber.org/zap"
)

// ClaimStatus is the outcome of a claim attempt. Everything except
// ClaimAccepted leaves the shift untouched.
type ClaimStatus int

const (
	ClaimNotFound ClaimStatus = iota
	ClaimCancelled
	ClaimOwnShift
	ClaimAlreadyClaimed
	ClaimOverCap
	ClaimAccepted
)

// ClaimOutcome pairs the claim status with the claimant's rolling hours at
// decision time, for user feedback.
type ClaimOutcome struct {
	Status     ClaimStatus
	TotalHours float64
}

// CancelStatus is the outcome of a cancel attempt.
type CancelStatus int

const (
	CancelNotFound CancelStatus = iota
	CancelNotOwner
	CancelAlreadyCancelled
	CancelledWasClaimed
	CancelDone
)

// EditStatus is the outcome of an edit attempt.
type EditStatus int

const (
	EditNotFound EditStatus = iota
	EditNotOwner
	EditAlreadyClaimed
	EditCancelled
	EditNoChanges
	EditInvalidDuration
	EditUpdated
)

// CreateShiftInput describes a new shift drop. StartTime nil means a generic
// shift with no scheduled start; AssignedUserID is set for schedule-derived
// drops.
type CreateShiftInput struct {
	MessageRef     string
	ChannelRef     string
	Description    string
	CreatedBy      string
	StartTime      *time.Time
	DurationHours  float64
	AssignedUserID string
}

// ShiftService owns the shift lifecycle: it is the sole writer of shift rows.
type ShiftService struct {
	dm       contract.DataManager
	fairness FairnessConfig
	log      *zap.Logger
}

func newShiftService(dm contract.DataManager, fairness FairnessConfig, log *zap.Logger) *ShiftService {
	return &ShiftService{
		dm:       dm,
		fairness: fairness,
		log:      log,
	}
}

// Create persists a new shift. Duration defaults to 1.0 when unset; for
// scheduled shifts the range is re-checked even though the command layer
// validates first.
func (s *ShiftService) Create(in CreateShiftInput, now time.Time) (*entity.Shift, error) {
	if in.DurationHours == 0 {
		in.DurationHours = domain.DefaultDurationHours
	}
	if in.StartTime != nil &&
		(in.DurationHours < domain.MinDurationHours || in.DurationHours > domain.MaxDurationHours) {
		return nil, fmt.Errorf("duration must be between %.2f and %.1f hours",
			domain.MinDurationHours, domain.MaxDurationHours)
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = "Upcoming shift"
	}

	shift := &entity.Shift{
		MessageRef:     in.MessageRef,
		ChannelRef:     in.ChannelRef,
		Description:    description,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		StartTime:      in.StartTime,
		DurationHours:  in.DurationHours,
		AssignedUserID: in.AssignedUserID,
	}

	if err := s.dm.Shift().Create(shift); err != nil {
		return nil, fmt.Errorf("failed to save shift: %w", err)
	}

	s.log.Info("shift dropped",
		zap.String("message_ref", shift.MessageRef),
		zap.String("created_by", shift.CreatedBy),
		zap.Bool("scheduled", shift.StartTime != nil),
	)
	return shift, nil
}

// Claim runs the read-decide-write sequence for a claim attempt in a single
// transaction. The decisive write is conditional on the shift still being
// open, so two concurrent claims on the same shift cannot both succeed.
func (s *ShiftService) Claim(ctx context.Context, messageRef, userID string, now time.Time) (ClaimOutcome, error) {
	var out ClaimOutcome

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		shift, err := tx.Shift().GetByMessageRef(messageRef)
		if err != nil {
			return err
		}

		switch {
		case shift == nil:
			out.Status = ClaimNotFound
			return nil
		case shift.Cancelled:
			out.Status = ClaimCancelled
			return nil
		case shift.CreatedBy == userID:
			out.Status = ClaimOwnShift
			return nil
		case shift.Claimed():
			out.Status = ClaimAlreadyClaimed
			return nil
		}

		total, err := tx.Shift().ClaimedHoursSince(userID, now.Add(-domain.RollingWindow))
		if err != nil {
			return err
		}
		out.TotalHours = total

		if !claimEligible(shift.StartTime, total, now, s.fairness) {
			out.Status = ClaimOverCap
			return nil
		}

		ok, err := tx.Shift().ClaimIfOpen(messageRef, userID, now)
		if err != nil {
			return err
		}
		if !ok {
			// The conditional update matched nothing: another claim (or a
			// cancellation) committed between our read and write.
			out.Status = ClaimAlreadyClaimed
			return nil
		}

		out.Status = ClaimAccepted
		return nil
	})
	if err != nil {
		return ClaimOutcome{}, fmt.Errorf("claim failed: %w", err)
	}

	if out.Status == ClaimAccepted {
		s.log.Info("shift claimed",
			zap.String("message_ref", messageRef),
			zap.String("claimed_by", userID),
			zap.Float64("rolling_hours", out.TotalHours),
		)
	}
	return out, nil
}

// Cancel marks a shift cancelled. Only the creator or an admin may cancel;
// cancelling a claimed shift is allowed and reported so the caller can notify
// the now-uncovered claimant. Cancellation is irreversible.
func (s *ShiftService) Cancel(ctx context.Context, messageRef, callerID string, isAdmin bool) (CancelStatus, error) {
	var status CancelStatus

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		shift, err := tx.Shift().GetByMessageRef(messageRef)
		if err != nil {
			return err
		}

		switch {
		case shift == nil:
			status = CancelNotFound
			return nil
		case shift.CreatedBy != callerID && !isAdmin:
			status = CancelNotOwner
			return nil
		case shift.Cancelled:
			status = CancelAlreadyCancelled
			return nil
		}

		if err := tx.Shift().MarkCancelled(messageRef); err != nil {
			return err
		}

		if shift.Claimed() {
			status = CancelledWasClaimed
		} else {
			status = CancelDone
		}
		return nil
	})
	if err != nil {
		return CancelNotFound, fmt.Errorf("cancel failed: %w", err)
	}

	if status == CancelDone || status == CancelledWasClaimed {
		s.log.Info("shift cancelled",
			zap.String("message_ref", messageRef),
			zap.String("cancelled_by", callerID),
			zap.Bool("was_claimed", status == CancelledWasClaimed),
		)
	}
	return status, nil
}

// Edit applies a partial update to an unclaimed, non-cancelled shift. The
// duration check happens before any write, so a rejected edit changes
// nothing.
func (s *ShiftService) Edit(ctx context.Context, messageRef, callerID string, isAdmin bool, upd entity.ShiftUpdate) (EditStatus, *entity.Shift, error) {
	var status EditStatus
	var updated *entity.Shift

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		shift, err := tx.Shift().GetByMessageRef(messageRef)
		if err != nil {
			return err
		}

		switch {
		case shift == nil:
			status = EditNotFound
			return nil
		case shift.CreatedBy != callerID && !isAdmin:
			status = EditNotOwner
			return nil
		case shift.Claimed():
			status = EditAlreadyClaimed
			return nil
		case shift.Cancelled:
			status = EditCancelled
			return nil
		case upd.Empty():
			status = EditNoChanges
			return nil
		}

		if upd.DurationHours != nil &&
			(*upd.DurationHours < domain.MinDurationHours || *upd.DurationHours > domain.MaxDurationHours) {
			status = EditInvalidDuration
			return nil
		}

		if err := tx.Shift().UpdatePartial(messageRef, upd); err != nil {
			return err
		}

		if upd.Description != nil {
			shift.Description = *upd.Description
		}
		if upd.StartTime != nil {
			shift.StartTime = upd.StartTime
		}
		if upd.DurationHours != nil {
			shift.DurationHours = *upd.DurationHours
		}

		status = EditUpdated
		updated = shift
		return nil
	})
	if err != nil {
		return EditNotFound, nil, fmt.Errorf("edit failed: %w", err)
	}

	if status == EditUpdated {
		s.log.Info("shift edited",
			zap.String("message_ref", messageRef),
			zap.String("edited_by", callerID),
		)
	}
	return status, updated, nil
}

// StatsFor returns the claimed-shift count and total hours over a
// moderator's non-cancelled claims.
func (s *ShiftService) StatsFor(userID string) (int, float64, error) {
	return s.dm.Shift().ClaimedStats(userID)
}

// ListCancellable returns the most recent shifts the caller may cancel.
// Admins see everyone's; non-admins only their own.
func (s *ShiftService) ListCancellable(callerID string, isAdmin bool) ([]*entity.Shift, error) {
	return s.dm.Shift().ListCancellable(callerID, isAdmin, domain.ListLimit)
}

// ListEditable returns the most recent unclaimed shifts the caller may edit.
func (s *ShiftService) ListEditable(callerID string, isAdmin bool) ([]*entity.Shift, error) {
	return s.dm.Shift().ListEditable(callerID, isAdmin, domain.ListLimit)
}
