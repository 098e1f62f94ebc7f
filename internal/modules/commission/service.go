package commission

import (
	"context"
	"time"

	"inkbook/internal/domain"
	"inkbook/internal/repository"
)

type Service struct {
	rules RuleRepository
}

func NewService(rules RuleRepository) *Service {
	return &Service{rules: rules}
}

// Calculate produces the earned commission for a completed booking.
// The call is idempotent: an existing record for the booking is
// returned unchanged, even if the studio's rules changed since.
func (s *Service) Calculate(ctx context.Context, b *domain.Booking) (*domain.EarnedCommission, error) {
	existing, err := s.rules.GetEarnedByBookingID(ctx, b.ID)
	if err == nil {
		return existing, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	rules, err := s.rules.ActiveRulesByStudio(ctx, b.StudioID)
	if err != nil {
		return nil, err
	}

	rule, err := pickRule(rules, b.ServiceCategory, b.StartTime)
	if err != nil {
		return nil, err
	}

	earned := &domain.EarnedCommission{
		StudioID:   b.StudioID,
		BookingID:  b.ID,
		ComputedAt: time.Now().UTC(),
	}
	if rule != nil {
		amount, err := ruleAmount(rule, b.PriceCents)
		if err != nil {
			return nil, err
		}
		id := rule.ID
		earned.AmountCents = amount
		earned.RuleID = &id
		earned.RuleVersion = rule.Version
	}
	// No matching rule records a zero amount so completion still leaves
	// an auditable row.
	return s.rules.CreateEarnedIdempotent(ctx, earned)
}

// pickRule selects the single applicable rule. Rules arrive ordered by
// priority descending; two matches at the top priority are a studio
// configuration error.
func pickRule(rules []domain.CommissionRule, category string, start time.Time) (*domain.CommissionRule, error) {
	var winner *domain.CommissionRule
	for i := range rules {
		if !rules[i].Matches(category, start) {
			continue
		}
		if winner == nil {
			winner = &rules[i]
			continue
		}
		if rules[i].Priority == winner.Priority {
			return nil, ErrRuleConflict
		}
		// Lower priority than the winner; ordering guarantees the rest
		// are lower still.
		break
	}
	return winner, nil
}

func ruleAmount(rule *domain.CommissionRule, priceCents int64) (int64, error) {
	switch rule.Kind {
	case domain.CommissionPercentage:
		return applyBP(priceCents, rule.RateBP), nil
	case domain.CommissionFlat:
		if rule.FlatCents > priceCents {
			return priceCents, nil
		}
		return rule.FlatCents, nil
	case domain.CommissionTiered:
		tiers, err := rule.DecodeTiers()
		if err != nil {
			return 0, err
		}
		for _, t := range tiers {
			if t.UpToCents == 0 || priceCents <= t.UpToCents {
				return applyBP(priceCents, t.RateBP), nil
			}
		}
		return 0, nil
	default:
		return 0, ErrValidation
	}
}

// applyBP computes price * bp / 10000 with half-up rounding on the
// final cent.
func applyBP(priceCents, bp int64) int64 {
	return (priceCents*bp + 5000) / 10000
}

func (s *Service) CreateRule(ctx context.Context, studioID int64, req CreateRuleRequest) (*domain.CommissionRule, error) {
	rule := domain.CommissionRule{
		StudioID:        studioID,
		Kind:            domain.CommissionKind(req.Kind),
		RateBP:          req.RateBP,
		FlatCents:       req.FlatCents,
		Tiers:           req.Tiers,
		ServiceCategory: req.ServiceCategory,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		Active:          true,
		Priority:        req.Priority,
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if err := s.rules.CreateRule(ctx, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func validateRule(rule domain.CommissionRule) error {
	if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidUntil.Before(*rule.ValidFrom) {
		return ErrValidation
	}
	switch rule.Kind {
	case domain.CommissionPercentage:
		if rule.RateBP <= 0 || rule.RateBP > 10000 {
			return ErrValidation
		}
	case domain.CommissionFlat:
		if rule.FlatCents <= 0 {
			return ErrValidation
		}
	case domain.CommissionTiered:
		tiers, err := rule.DecodeTiers()
		if err != nil || len(tiers) == 0 {
			return ErrValidation
		}
		var prev int64
		for i, t := range tiers {
			if t.RateBP < 0 || t.RateBP > 10000 {
				return ErrValidation
			}
			openEnded := t.UpToCents == 0
			if openEnded && i != len(tiers)-1 {
				return ErrValidation
			}
			if !openEnded && t.UpToCents <= prev {
				return ErrValidation
			}
			prev = t.UpToCents
		}
	default:
		return ErrValidation
	}
	return nil
}

func (s *Service) DeactivateRule(ctx context.Context, ruleID, studioID int64) error {
	if err := s.rules.DeactivateRule(ctx, ruleID, studioID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListRules(ctx context.Context, studioID int64) ([]domain.CommissionRule, error) {
	return s.rules.ActiveRulesByStudio(ctx, studioID)
}

func (s *Service) ListEarned(ctx context.Context, studioID int64, limit, offset int) ([]domain.EarnedCommission, error) {
	return s.rules.ListEarnedByStudio(ctx, studioID, limit, offset)
}

func (s *Service) EarnedForBooking(ctx context.Context, bookingID int64) (*domain.EarnedCommission, error) {
	e, err := s.rules.GetEarnedByBookingID(ctx, bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}
