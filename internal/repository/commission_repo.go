package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkbook/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

type commissionRuleModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	StudioID        int64      `gorm:"column:studio_id;index"`
	Kind            string     `gorm:"column:kind"`
	RateBP          int64      `gorm:"column:rate_bp"`
	FlatCents       int64      `gorm:"column:flat_cents"`
	Tiers           []byte     `gorm:"column:tiers;type:jsonb"`
	ServiceCategory *string    `gorm:"column:service_category"`
	ValidFrom       *time.Time `gorm:"column:valid_from"`
	ValidUntil      *time.Time `gorm:"column:valid_until"`
	Active          bool       `gorm:"column:active"`
	Priority        int        `gorm:"column:priority"`
	Version         int        `gorm:"column:version"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (commissionRuleModel) TableName() string { return "commission_rules" }

func toDomainCommissionRule(m commissionRuleModel) domain.CommissionRule {
	return domain.CommissionRule{
		ID:              m.ID,
		StudioID:        m.StudioID,
		Kind:            domain.CommissionKind(m.Kind),
		RateBP:          m.RateBP,
		FlatCents:       m.FlatCents,
		Tiers:           json.RawMessage(m.Tiers),
		ServiceCategory: strOrEmpty(m.ServiceCategory),
		ValidFrom:       m.ValidFrom,
		ValidUntil:      m.ValidUntil,
		Active:          m.Active,
		Priority:        m.Priority,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *CommissionRepository) CreateRule(ctx context.Context, rule *domain.CommissionRule) error {
	m := commissionRuleModel{
		StudioID:        rule.StudioID,
		Kind:            string(rule.Kind),
		RateBP:          rule.RateBP,
		FlatCents:       rule.FlatCents,
		Tiers:           []byte(rule.Tiers),
		ServiceCategory: strPtr(rule.ServiceCategory),
		ValidFrom:       rule.ValidFrom,
		ValidUntil:      rule.ValidUntil,
		Active:          rule.Active,
		Priority:        rule.Priority,
		Version:         1,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*rule = toDomainCommissionRule(m)
	return nil
}

// DeactivateRule retires a rule; version history stays in place so
// earned commissions keep a resolvable rule reference.
func (r *CommissionRepository) DeactivateRule(ctx context.Context, ruleID, studioID int64) error {
	tx := r.db.WithContext(ctx).
		Model(&commissionRuleModel{}).
		Where("id = ? AND studio_id = ?", ruleID, studioID).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CommissionRepository) ActiveRulesByStudio(ctx context.Context, studioID int64) ([]domain.CommissionRule, error) {
	var ms []commissionRuleModel
	tx := r.db.WithContext(ctx).
		Where("studio_id = ? AND active = ?", studioID, true).
		Order("priority DESC, id").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.CommissionRule, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomainCommissionRule(m))
	}
	return out, nil
}

type earnedCommissionModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	StudioID    int64     `gorm:"column:studio_id;index"`
	BookingID   int64     `gorm:"column:booking_id;uniqueIndex:idx_earned_booking"`
	AmountCents int64     `gorm:"column:amount_cents"`
	RuleID      *int64    `gorm:"column:rule_id"`
	RuleVersion int       `gorm:"column:rule_version"`
	ComputedAt  time.Time `gorm:"column:computed_at"`
}

func (earnedCommissionModel) TableName() string { return "earned_commissions" }

func toDomainEarned(m earnedCommissionModel) *domain.EarnedCommission {
	return &domain.EarnedCommission{
		ID:          m.ID,
		StudioID:    m.StudioID,
		BookingID:   m.BookingID,
		AmountCents: m.AmountCents,
		RuleID:      m.RuleID,
		RuleVersion: m.RuleVersion,
		ComputedAt:  m.ComputedAt,
	}
}

// GetEarnedByBookingID returns the earned commission for a booking, or
// gorm.ErrRecordNotFound.
func (r *CommissionRepository) GetEarnedByBookingID(ctx context.Context, bookingID int64) (*domain.EarnedCommission, error) {
	var m earnedCommissionModel
	tx := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainEarned(m), nil
}

// CreateEarnedIdempotent inserts the record unless one already exists
// for the booking; on conflict the stored record is returned unchanged
// so a re-run is bit-identical.
func (r *CommissionRepository) CreateEarnedIdempotent(ctx context.Context, e *domain.EarnedCommission) (*domain.EarnedCommission, error) {
	m := earnedCommissionModel{
		StudioID:    e.StudioID,
		BookingID:   e.BookingID,
		AmountCents: e.AmountCents,
		RuleID:      e.RuleID,
		RuleVersion: e.RuleVersion,
		ComputedAt:  e.ComputedAt,
	}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 || m.ID == 0 {
		// Lost the insert race or row existed; read the winner.
		return r.GetEarnedByBookingID(ctx, e.BookingID)
	}
	return toDomainEarned(m), nil
}

func (r *CommissionRepository) ListEarnedByStudio(ctx context.Context, studioID int64, limit, offset int) ([]domain.EarnedCommission, error) {
	var ms []earnedCommissionModel
	tx := r.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("computed_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.EarnedCommission, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainEarned(m))
	}
	return out, nil
}

// IsNotFound wraps the gorm sentinel so services outside the
// repository package do not import gorm for the check.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
