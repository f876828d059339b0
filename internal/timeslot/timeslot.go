// Package timeslot resolves recurring weekly schedule slots into concrete
// UTC instants, handling daylight-saving transitions through the zone
// database rather than fixed offsets.
package timeslot

import (
	"errors"
	"fmt"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain"
)

// ErrPastInstant is returned when an explicit date resolves to an instant
// that is not strictly in the future.
var ErrPastInstant = errors.New("resolved start time is in the past")

// ErrInvalidDate is returned when a date string does not parse as YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// WeekdayMismatchError reports an explicit date whose weekday does not match
// the selected slot. Both names are carried for user feedback.
type WeekdayMismatchError struct {
	Expected string
	Actual   string
}

func (e *WeekdayMismatchError) Error() string {
	return fmt.Sprintf("date falls on a %s, but the slot is for %s", e.Actual, e.Expected)
}

// localWeekday converts Go's Sunday-based weekday to the 0=Monday numbering
// used by schedule slots.
func localWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func loadLocation(tzName string) *time.Location {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		// Slots are validated at creation, so this should not happen. Degrade
		// to UTC instead of failing the whole drop.
		return time.UTC
	}
	return loc
}

// NextOccurrence returns the next instant, strictly after now, at which the
// slot's local wall-clock time (hour:minute on the given weekday) occurs in
// its timezone. The result is in UTC. Wall-clock times that fall into a DST
// gap or overlap take the zone database's forward resolution.
func NextOccurrence(weekday, hour, minute int, tzName string, now time.Time) time.Time {
	loc := loadLocation(tzName)
	nowLocal := now.In(loc)

	days := (weekday - localWeekday(nowLocal) + 7) % 7

	candidate := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day()+days,
		hour, minute, 0, 0, loc)
	if !candidate.After(nowLocal) {
		// That time already passed this week; rebuild a week later so the
		// wall clock is re-resolved against the offset rules of that date.
		candidate = time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day()+days+7,
			hour, minute, 0, 0, loc)
	}

	return candidate.UTC()
}

// ResolveExplicitDate resolves a slot against a caller-supplied calendar date
// instead of the next occurrence. The date's weekday must match the slot's,
// and the resulting instant must be strictly after now.
func ResolveExplicitDate(weekday, hour, minute int, tzName, date string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	if actual := localWeekday(parsed); actual != weekday {
		return time.Time{}, &WeekdayMismatchError{
			Expected: domain.WeekdayNames[weekday],
			Actual:   domain.WeekdayNames[actual],
		}
	}

	loc := loadLocation(tzName)
	start := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, minute, 0, 0, loc).UTC()

	if !start.After(now) {
		return time.Time{}, ErrPastInstant
	}

	return start, nil
}

// UTCOffsetLabel renders the zone's offset in force at now as "UTC±H" or
// "UTC±H:MM". Display only; unknown zones fall back to the zone name itself.
func UTCOffsetLabel(tzName string, now time.Time) string {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return tzName
	}

	_, offset := now.In(loc).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}

	hours := offset / 3600
	mins := (offset % 3600) / 60
	if mins == 0 {
		return fmt.Sprintf("UTC%s%d", sign, hours)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, hours, mins)
}

// FormatSlot renders a slot for display, e.g. "Wednesday 14:00 (America/New_York)".
func FormatSlot(weekday, hour, minute int, tzName string) string {
	name, ok := domain.WeekdayNames[weekday]
	if !ok {
		name = "Unknown"
	}
	return fmt.Sprintf("%s %02d:%02d (%s)", name, hour, minute, tzName)
}
