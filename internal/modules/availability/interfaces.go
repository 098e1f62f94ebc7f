package availability

import (
	"context"
	"time"

	"inkbook/internal/domain"
	"inkbook/internal/repository"
)

// RuleRepository covers the availability-rule and time-off storage the
// engine needs.
type RuleRepository interface {
	CreateRule(ctx context.Context, rule *domain.AvailabilityRule) error
	DeactivateRule(ctx context.Context, ruleID, artistID int64) error
	ActiveRulesByArtist(ctx context.Context, artistID int64) ([]domain.AvailabilityRule, error)
	RulesByArtist(ctx context.Context, artistID int64) ([]domain.AvailabilityRule, error)
	CreateTimeOff(ctx context.Context, t *domain.TimeOff) error
	DeleteTimeOff(ctx context.Context, timeOffID, artistID int64) error
	TimeOffInRange(ctx context.Context, artistID int64, from, to time.Time) ([]domain.TimeOff, error)
}

// BookingReader exposes the occupied windows of an artist.
type BookingReader interface {
	BusyWindows(ctx context.Context, artistID int64, from, to time.Time) ([]repository.BusyWindow, error)
}
