package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// IsTerminal reports whether no further status transition is allowed.
// Refund fields may still be appended after cancellation for
// late-settled refunds; the status itself never changes again.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// Booking is a client's appointment request with one artist. All money
// amounts are integer minor units (cents), never floats.
type Booking struct {
	ID        int64     `json:"id"`
	StudioID  int64     `json:"studio_id" validate:"required"`
	ArtistID  int64     `json:"artist_id" validate:"required"`
	ClientID  int64     `json:"client_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`

	ServiceCategory string        `json:"service_category,omitempty"`
	PriceCents      int64         `json:"price_cents" validate:"gte=0"`
	DepositCents    int64         `json:"deposit_cents" validate:"gte=0"`
	Status          BookingStatus `json:"status"`
	PaymentRef      string        `json:"payment_ref,omitempty"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`

	RefundCents  *int64     `json:"refund_cents,omitempty"`
	RefundRef    string     `json:"refund_ref,omitempty"`
	RefundReason string     `json:"refund_reason,omitempty" gorm:"type:text"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
	RefundedBy   int64      `json:"refunded_by,omitempty"`

	NoShow   bool       `json:"no_show,omitempty"`
	NoShowAt *time.Time `json:"no_show_at,omitempty"`

	CommissionID *int64 `json:"commission_id,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefundPolicy drives the refund computed on a CONFIRMED cancellation.
// Lead time is measured from the cancellation instant to the scheduled
// start. Boundary equality and cent rounding both resolve toward the
// smaller refund.
type RefundPolicy struct {
	FullRefundLead    time.Duration
	PartialRefundLead time.Duration
	PartialBP         int64 // basis points of the deposit
}

// RefundFor returns the refund in cents for a cancellation at
// cancelledAt of an appointment starting at start.
func (p RefundPolicy) RefundFor(cancelledAt, start time.Time, depositCents int64) int64 {
	if depositCents <= 0 {
		return 0
	}
	lead := start.Sub(cancelledAt)
	switch {
	case lead > p.FullRefundLead:
		return depositCents
	case lead > p.PartialRefundLead:
		return depositCents * p.PartialBP / 10000
	default:
		return 0
	}
}
