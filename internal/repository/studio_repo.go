package repository

import (
	"context"
	"time"

	"inkbook/internal/domain"

	"gorm.io/gorm"
)

type StudioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) *StudioRepository {
	return &StudioRepository{db: db}
}

type studioModel struct {
	ID                     int64     `gorm:"column:id;primaryKey"`
	OwnerID                int64     `gorm:"column:owner_id;index"`
	Name                   string    `gorm:"column:name"`
	Address                *string   `gorm:"column:address"`
	City                   *string   `gorm:"column:city"`
	Description            *string   `gorm:"column:description"`
	Timezone               string    `gorm:"column:timezone"`
	FullRefundLeadHours    int       `gorm:"column:full_refund_lead_hours"`
	PartialRefundLeadHours int       `gorm:"column:partial_refund_lead_hours"`
	PartialRefundBP        int64     `gorm:"column:partial_refund_bp"`
	CreatedAt              time.Time `gorm:"column:created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

func (studioModel) TableName() string { return "studios" }

func toDomainStudio(m studioModel) *domain.Studio {
	return &domain.Studio{
		ID:                     m.ID,
		OwnerID:                m.OwnerID,
		Name:                   m.Name,
		Address:                strOrEmpty(m.Address),
		City:                   strOrEmpty(m.City),
		Description:            strOrEmpty(m.Description),
		Timezone:               m.Timezone,
		FullRefundLeadHours:    m.FullRefundLeadHours,
		PartialRefundLeadHours: m.PartialRefundLeadHours,
		PartialRefundBP:        m.PartialRefundBP,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func (r *StudioRepository) Create(ctx context.Context, s *domain.Studio) error {
	m := studioModel{
		OwnerID:                s.OwnerID,
		Name:                   s.Name,
		Address:                strPtr(s.Address),
		City:                   strPtr(s.City),
		Description:            strPtr(s.Description),
		Timezone:               s.Timezone,
		FullRefundLeadHours:    s.FullRefundLeadHours,
		PartialRefundLeadHours: s.PartialRefundLeadHours,
		PartialRefundBP:        s.PartialRefundBP,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*s = *toDomainStudio(m)
	return nil
}

func (r *StudioRepository) GetByID(ctx context.Context, id int64) (*domain.Studio, error) {
	var m studioModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainStudio(m), nil
}

func (r *StudioRepository) List(ctx context.Context, limit, offset int) ([]domain.Studio, error) {
	var ms []studioModel
	tx := r.db.WithContext(ctx).Order("name").Limit(limit).Offset(offset).Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Studio, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainStudio(m))
	}
	return out, nil
}
