package timeslot

import (
	"errors"
	"testing"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrence_SameDayLaterTime(t *testing.T) {
	// Wednesday 2025-01-15, 08:00 in New York (13:00 UTC). A Wednesday
	// 14:00 slot is still ahead today.
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)

	got := NextOccurrence(domain.Wednesday, 14, 0, "America/New_York", now)

	assert.Equal(t, time.Date(2025, 1, 15, 19, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrence_SameDayTimePassed(t *testing.T) {
	// Wednesday 15:00 local: a Wednesday 14:00 slot must resolve to the
	// following Wednesday, not today.
	now := time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC)

	got := NextOccurrence(domain.Wednesday, 14, 0, "America/New_York", now)

	assert.Equal(t, time.Date(2025, 1, 22, 19, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrence_ExactSlotTimeRollsForward(t *testing.T) {
	// now equals the slot instant; "strictly after" pushes a full week out.
	now := time.Date(2025, 1, 15, 19, 0, 0, 0, time.UTC)

	got := NextOccurrence(domain.Wednesday, 14, 0, "America/New_York", now)

	assert.Equal(t, time.Date(2025, 1, 22, 19, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrence_DSTGap(t *testing.T) {
	// 2025-03-09 02:30 does not exist in New York (spring forward). The
	// zone rules resolve it forward to 03:30 EDT, which is 07:30 UTC.
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC) // Friday

	got := NextOccurrence(domain.Sunday, 2, 30, "America/New_York", now)

	assert.Equal(t, time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC), got)
}

func TestNextOccurrence_OffsetFollowsSeason(t *testing.T) {
	winterNow := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC) // Monday
	summerNow := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC) // Monday

	winter := NextOccurrence(domain.Tuesday, 14, 0, "America/New_York", winterNow)
	summer := NextOccurrence(domain.Tuesday, 14, 0, "America/New_York", summerNow)

	// Same wall clock, different UTC instants: EST is UTC-5, EDT is UTC-4.
	assert.Equal(t, 19, winter.Hour())
	assert.Equal(t, 18, summer.Hour())
}

func TestNextOccurrence_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC) // Wednesday

	got := NextOccurrence(domain.Wednesday, 14, 0, "Not/AZone", now)

	assert.Equal(t, time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrence_AlwaysStrictlyAfterNow(t *testing.T) {
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)

	for weekday := range domain.WeekdayNames {
		got := NextOccurrence(weekday, 9, 30, "Europe/Berlin", now)
		assert.True(t, got.After(now), "occurrence for weekday %d not after now", weekday)
		assert.True(t, got.Sub(now) <= 7*24*time.Hour, "occurrence for weekday %d more than a week out", weekday)
	}
}

func TestResolveExplicitDate(t *testing.T) {
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)

	// 2025-06-09 is a Monday; 14:00 in New York is EDT, UTC-4.
	got, err := ResolveExplicitDate(domain.Monday, 14, 0, "America/New_York", "2025-06-09", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 9, 18, 0, 0, 0, time.UTC), got)
}

func TestResolveExplicitDate_WeekdayMismatch(t *testing.T) {
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)

	// 2025-01-14 is a Tuesday.
	_, err := ResolveExplicitDate(domain.Monday, 14, 0, "UTC", "2025-01-14", now)

	var mismatch *WeekdayMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Monday", mismatch.Expected)
	assert.Equal(t, "Tuesday", mismatch.Actual)
}

func TestResolveExplicitDate_PastInstant(t *testing.T) {
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)

	// 2020-01-06 was a Monday, long gone.
	_, err := ResolveExplicitDate(domain.Monday, 14, 0, "UTC", "2020-01-06", now)

	assert.True(t, errors.Is(err, ErrPastInstant))
}

func TestResolveExplicitDate_InvalidDate(t *testing.T) {
	now := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)

	_, err := ResolveExplicitDate(domain.Monday, 14, 0, "UTC", "tomorrow", now)

	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestUTCOffsetLabel(t *testing.T) {
	january := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "UTC+0", UTCOffsetLabel("UTC", january))
	assert.Equal(t, "UTC-5", UTCOffsetLabel("America/New_York", january))
	assert.Equal(t, "UTC-4", UTCOffsetLabel("America/New_York", july))
	assert.Equal(t, "UTC+5:30", UTCOffsetLabel("Asia/Kolkata", january))
	assert.Equal(t, "Not/AZone", UTCOffsetLabel("Not/AZone", january))
}

func TestFormatSlot(t *testing.T) {
	assert.Equal(t, "Wednesday 14:00 (America/New_York)",
		FormatSlot(domain.Wednesday, 14, 0, "America/New_York"))
	assert.Equal(t, "Sunday 09:05 (UTC)",
		FormatSlot(domain.Sunday, 9, 5, "UTC"))
}
