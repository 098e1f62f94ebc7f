package repository

import (
	"context"
	"time"

	"inkbook/internal/domain"

	"gorm.io/gorm"
)

type ArtistRepository struct {
	db *gorm.DB
}

func NewArtistRepository(db *gorm.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

type artistModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	StudioID  int64     `gorm:"column:studio_id;index"`
	UserID    int64     `gorm:"column:user_id;index"`
	Name      string    `gorm:"column:name"`
	Specialty *string   `gorm:"column:specialty"`
	Bio       *string   `gorm:"column:bio"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (artistModel) TableName() string { return "artists" }

func toDomainArtist(m artistModel) *domain.Artist {
	return &domain.Artist{
		ID:        m.ID,
		StudioID:  m.StudioID,
		UserID:    m.UserID,
		Name:      m.Name,
		Specialty: strOrEmpty(m.Specialty),
		Bio:       strOrEmpty(m.Bio),
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *ArtistRepository) Create(ctx context.Context, a *domain.Artist) error {
	m := artistModel{
		StudioID:  a.StudioID,
		UserID:    a.UserID,
		Name:      a.Name,
		Specialty: strPtr(a.Specialty),
		Bio:       strPtr(a.Bio),
		Active:    a.Active,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*a = *toDomainArtist(m)
	return nil
}

func (r *ArtistRepository) GetByID(ctx context.Context, id int64) (*domain.Artist, error) {
	var m artistModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainArtist(m), nil
}

func (r *ArtistRepository) ListByStudio(ctx context.Context, studioID int64) ([]domain.Artist, error) {
	var ms []artistModel
	tx := r.db.WithContext(ctx).
		Where("studio_id = ? AND active = ?", studioID, true).
		Order("name").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Artist, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainArtist(m))
	}
	return out, nil
}
