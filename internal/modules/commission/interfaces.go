package commission

import (
	"context"

	"inkbook/internal/domain"
)

// RuleRepository is the storage surface for commission rules and the
// earned records they produce. CreateEarnedIdempotent must guarantee at
// most one earned record per booking.
type RuleRepository interface {
	CreateRule(ctx context.Context, rule *domain.CommissionRule) error
	DeactivateRule(ctx context.Context, ruleID, studioID int64) error
	ActiveRulesByStudio(ctx context.Context, studioID int64) ([]domain.CommissionRule, error)
	GetEarnedByBookingID(ctx context.Context, bookingID int64) (*domain.EarnedCommission, error)
	CreateEarnedIdempotent(ctx context.Context, e *domain.EarnedCommission) (*domain.EarnedCommission, error)
	ListEarnedByStudio(ctx context.Context, studioID int64, limit, offset int) ([]domain.EarnedCommission, error)
}
