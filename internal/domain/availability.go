package domain

import "time"

// AvailabilityRule is one recurring weekly working window of an artist.
// Times are "15:04" clock strings; DayOfWeek follows time.Weekday
// (0=Sunday..6=Saturday). Rules are never deleted, only deactivated,
// so past schedules stay auditable. Multiple rules per day form a
// union of intervals.
type AvailabilityRule struct {
	ID        int64     `json:"id"`
	ArtistID  int64     `json:"artist_id" validate:"required"`
	DayOfWeek int       `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string    `json:"start_time" validate:"required"`
	EndTime   string    `json:"end_time" validate:"required"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeOff blocks an artist's calendar between two dates, inclusive.
// When AllDay is false, only the StartTime..EndTime clock window of
// each covered date is blocked. Overlapping entries are a union.
type TimeOff struct {
	ID        int64     `json:"id"`
	ArtistID  int64     `json:"artist_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	AllDay    bool      `json:"all_day"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	Reason    string    `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// CoversDate reports whether the time-off entry covers the given
// calendar date (date component only, inclusive range).
func (t TimeOff) CoversDate(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(t.StartDate.Year(), t.StartDate.Month(), t.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(t.EndDate.Year(), t.EndDate.Month(), t.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(s) && !d.After(e)
}
