package domain

import (
	"encoding/json"
	"time"
)

type CommissionKind string

const (
	CommissionPercentage CommissionKind = "percentage"
	CommissionFlat       CommissionKind = "flat"
	CommissionTiered     CommissionKind = "tiered"
)

// CommissionTier is one price bracket of a tiered rule. A booking
// falls into the bracket when UpToCents is zero (open-ended) or the
// price is <= UpToCents; brackets are evaluated in ascending order.
type CommissionTier struct {
	UpToCents int64 `json:"up_to_cents"`
	RateBP    int64 `json:"rate_bp"`
}

// CommissionRule defines how a studio earns on completed bookings.
// At evaluation time at most one rule may match a booking; ties on
// the matching predicate are broken by Priority, highest wins.
type CommissionRule struct {
	ID       int64          `json:"id"`
	StudioID int64          `json:"studio_id" validate:"required"`
	Kind     CommissionKind `json:"kind" validate:"required"`

	RateBP    int64           `json:"rate_bp,omitempty"`
	FlatCents int64           `json:"flat_cents,omitempty"`
	Tiers     json.RawMessage `json:"tiers,omitempty" gorm:"type:jsonb"`

	ServiceCategory string     `json:"service_category,omitempty"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`

	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matches reports whether the rule applies to a booking with the
// given service category starting at the given time.
func (r CommissionRule) Matches(category string, start time.Time) bool {
	if r.ServiceCategory != "" && r.ServiceCategory != category {
		return false
	}
	if r.ValidFrom != nil && start.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && start.After(*r.ValidUntil) {
		return false
	}
	return true
}

// DecodeTiers unmarshals the stored tier brackets.
func (r CommissionRule) DecodeTiers() ([]CommissionTier, error) {
	if len(r.Tiers) == 0 {
		return nil, nil
	}
	var tiers []CommissionTier
	if err := json.Unmarshal(r.Tiers, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// EarnedCommission is the immutable record produced when a booking
// completes. Exactly one exists per completed booking; the amount is
// pinned to the rule version in effect at completion time.
type EarnedCommission struct {
	ID          int64     `json:"id"`
	StudioID    int64     `json:"studio_id"`
	BookingID   int64     `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	RuleID      *int64    `json:"rule_id,omitempty"`
	RuleVersion int       `json:"rule_version"`
	ComputedAt  time.Time `json:"computed_at"`
}
