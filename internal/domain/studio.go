package domain

import "time"

type Studio struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Refund policy knobs, zero values fall back to process defaults.
	FullRefundLeadHours    int   `json:"full_refund_lead_hours,omitempty"`
	PartialRefundLeadHours int   `json:"partial_refund_lead_hours,omitempty"`
	PartialRefundBP        int64 `json:"partial_refund_bp,omitempty"`
}

// Artist is a tattoo artist attached to a studio. Availability rules
// and time off are keyed by artist, bookings by the studio/artist pair.
type Artist struct {
	ID        int64     `json:"id"`
	StudioID  int64     `json:"studio_id" validate:"required"`
	UserID    int64     `json:"user_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Specialty string    `json:"specialty,omitempty"`
	Bio       string    `json:"bio,omitempty" gorm:"type:text"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
