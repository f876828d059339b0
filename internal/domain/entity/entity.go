package entity

import "time"

// Shift is one concrete, postable coverage need. The Slack message timestamp
// of the posted announcement acts as its reference key.
type Shift struct {
	ID             int64      `json:"id" db:"id"`
	MessageRef     string     `json:"message_ref" db:"message_ref"`
	ChannelRef     string     `json:"channel_ref" db:"channel_ref"`
	Description    string     `json:"description" db:"description"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartTime      *time.Time `json:"start_time_utc,omitempty" db:"start_time_utc"`
	DurationHours  float64    `json:"duration_hours" db:"duration_hours"`
	AssignedUserID string     `json:"assigned_user_id,omitempty" db:"assigned_user_id"`
	ClaimedBy      string     `json:"claimed_by,omitempty" db:"claimed_by"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty" db:"claimed_at"`
	Cancelled      bool       `json:"cancelled" db:"cancelled"`
}

// Claimed reports whether someone has taken the shift.
func (s *Shift) Claimed() bool {
	return s.ClaimedBy != ""
}

// ShiftUpdate carries the fields of a partial edit. Nil means "keep the
// current value"; only non-nil fields are written.
type ShiftUpdate struct {
	Description   *string
	StartTime     *time.Time
	DurationHours *float64
}

// Empty reports whether the update changes nothing.
func (u ShiftUpdate) Empty() bool {
	return u.Description == nil && u.StartTime == nil && u.DurationHours == nil
}

// ScheduleSlot is a recurring weekly availability entry for one moderator,
// kept in the moderator's own timezone. Weekday is 0=Monday through
// 6=Sunday.
type ScheduleSlot struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Weekday   int       `json:"weekday" db:"weekday"`
	Hour      int       `json:"hour" db:"hour"`
	Minute    int       `json:"minute" db:"minute"`
	Timezone  string    `json:"timezone" db:"timezone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
