package repository

import (
	"context"
	"time"

	"inkbook/internal/domain"

	"gorm.io/gorm"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

type availabilityRuleModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	ArtistID  int64     `gorm:"column:artist_id;index"`
	DayOfWeek int       `gorm:"column:day_of_week"`
	StartTime string    `gorm:"column:start_time"`
	EndTime   string    `gorm:"column:end_time"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (availabilityRuleModel) TableName() string { return "availability_rules" }

func toDomainRule(m availabilityRuleModel) domain.AvailabilityRule {
	return domain.AvailabilityRule{
		ID:        m.ID,
		ArtistID:  m.ArtistID,
		DayOfWeek: m.DayOfWeek,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *AvailabilityRepository) CreateRule(ctx context.Context, rule *domain.AvailabilityRule) error {
	m := availabilityRuleModel{
		ArtistID:  rule.ArtistID,
		DayOfWeek: rule.DayOfWeek,
		StartTime: rule.StartTime,
		EndTime:   rule.EndTime,
		Active:    rule.Active,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*rule = toDomainRule(m)
	return nil
}

// DeactivateRule flips the active flag. Rules are never deleted so
// past schedules remain auditable.
func (r *AvailabilityRepository) DeactivateRule(ctx context.Context, ruleID, artistID int64) error {
	tx := r.db.WithContext(ctx).
		Model(&availabilityRuleModel{}).
		Where("id = ? AND artist_id = ?", ruleID, artistID).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActiveRulesByArtist returns every active rule of the artist, ordered
// by weekday then start time.
func (r *AvailabilityRepository) ActiveRulesByArtist(ctx context.Context, artistID int64) ([]domain.AvailabilityRule, error) {
	var ms []availabilityRuleModel
	tx := r.db.WithContext(ctx).
		Where("artist_id = ? AND active = ?", artistID, true).
		Order("day_of_week, start_time").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.AvailabilityRule, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomainRule(m))
	}
	return out, nil
}

func (r *AvailabilityRepository) RulesByArtist(ctx context.Context, artistID int64) ([]domain.AvailabilityRule, error) {
	var ms []availabilityRuleModel
	tx := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("day_of_week, start_time").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.AvailabilityRule, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomainRule(m))
	}
	return out, nil
}

type timeOffModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	ArtistID  int64     `gorm:"column:artist_id;index"`
	StartDate time.Time `gorm:"column:start_date"`
	EndDate   time.Time `gorm:"column:end_date"`
	AllDay    bool      `gorm:"column:all_day"`
	StartTime *string   `gorm:"column:start_time"`
	EndTime   *string   `gorm:"column:end_time"`
	Reason    *string   `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (timeOffModel) TableName() string { return "time_off" }

func toDomainTimeOff(m timeOffModel) domain.TimeOff {
	return domain.TimeOff{
		ID:        m.ID,
		ArtistID:  m.ArtistID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		AllDay:    m.AllDay,
		StartTime: strOrEmpty(m.StartTime),
		EndTime:   strOrEmpty(m.EndTime),
		Reason:    strOrEmpty(m.Reason),
		CreatedAt: m.CreatedAt,
	}
}

func (r *AvailabilityRepository) CreateTimeOff(ctx context.Context, t *domain.TimeOff) error {
	m := timeOffModel{
		ArtistID:  t.ArtistID,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		AllDay:    t.AllDay,
		StartTime: strPtr(t.StartTime),
		EndTime:   strPtr(t.EndTime),
		Reason:    strPtr(t.Reason),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*t = toDomainTimeOff(m)
	return nil
}

func (r *AvailabilityRepository) DeleteTimeOff(ctx context.Context, timeOffID, artistID int64) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND artist_id = ?", timeOffID, artistID).
		Delete(&timeOffModel{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TimeOffInRange returns the artist's time-off entries whose inclusive
// date span intersects [from, to].
func (r *AvailabilityRepository) TimeOffInRange(ctx context.Context, artistID int64, from, to time.Time) ([]domain.TimeOff, error) {
	var ms []timeOffModel
	tx := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("start_date").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.TimeOff, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomainTimeOff(m))
	}
	return out, nil
}
