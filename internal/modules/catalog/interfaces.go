package catalog

import (
	"context"

	"inkbook/internal/domain"
)

type StudioRepository interface {
	Create(ctx context.Context, s *domain.Studio) error
	GetByID(ctx context.Context, id int64) (*domain.Studio, error)
	List(ctx context.Context, limit, offset int) ([]domain.Studio, error)
}

type ArtistRepository interface {
	Create(ctx context.Context, a *domain.Artist) error
	GetByID(ctx context.Context, id int64) (*domain.Artist, error)
	ListByStudio(ctx context.Context, studioID int64) ([]domain.Artist, error)
}
