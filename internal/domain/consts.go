package domain

import "time"

// Weekday constants, 0=Monday through 6=Sunday. Schedule slots and shift
// drops use this numbering everywhere; conversion to Go's Sunday-based
// time.Weekday happens only inside the timeslot package.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayNames maps weekday numbers to their English names.
var WeekdayNames = map[int]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// WeekdayNumbers maps lowercase day names to weekday numbers.
var WeekdayNumbers = map[string]int{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
}

// Duration limits for a shift's duration_hours value.
const (
	MinDurationHours = 0.25
	MaxDurationHours = 24.0
)

// DefaultDurationHours is used when a drop does not specify a duration.
const DefaultDurationHours = 1.0

// RollingWindow is the fairness lookback: claimed hours are summed over
// shifts starting within this window (or with no start at all).
const RollingWindow = 7 * 24 * time.Hour

// ListLimit caps the cancellable/editable shift listings.
const ListLimit = 25

// DefaultTimezone is used for new schedule slots when none is given.
const DefaultTimezone = "UTC"

// Claim button affordance. There is exactly one claim action in the whole
// bot; every dropped shift message carries a button with this action ID.
const (
	ClaimActionID    = "shift_claim_button"
	ClaimButtonLabel = "Claim shift"
)

// CommonTimezones is shown in schedule help output, with live UTC offsets.
var CommonTimezones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Asia/Tokyo",
	"Asia/Shanghai",
	"Asia/Kolkata",
	"Australia/Sydney",
	"Pacific/Auckland",
}
