package catalog

import (
	"context"

	"inkbook/internal/domain"
	"inkbook/internal/repository"
)

type Service struct {
	studios StudioRepository
	artists ArtistRepository
}

func NewService(studios StudioRepository, artists ArtistRepository) *Service {
	return &Service{studios: studios, artists: artists}
}

func (s *Service) CreateStudio(ctx context.Context, ownerID int64, req CreateStudioRequest) (*domain.Studio, error) {
	if req.PartialRefundBP < 0 || req.PartialRefundBP > 10000 {
		return nil, ErrValidation
	}
	if req.FullRefundLeadHours < 0 || req.PartialRefundLeadHours < 0 {
		return nil, ErrValidation
	}
	if req.FullRefundLeadHours > 0 && req.PartialRefundLeadHours > req.FullRefundLeadHours {
		return nil, ErrValidation
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	studio := &domain.Studio{
		OwnerID:                ownerID,
		Name:                   req.Name,
		Address:                req.Address,
		City:                   req.City,
		Description:            req.Description,
		Timezone:               tz,
		FullRefundLeadHours:    req.FullRefundLeadHours,
		PartialRefundLeadHours: req.PartialRefundLeadHours,
		PartialRefundBP:        req.PartialRefundBP,
	}
	if err := s.studios.Create(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

func (s *Service) GetStudio(ctx context.Context, id int64) (*domain.Studio, error) {
	studio, err := s.studios.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return studio, nil
}

func (s *Service) ListStudios(ctx context.Context, limit, offset int) ([]domain.Studio, error) {
	return s.studios.List(ctx, limit, offset)
}

// AddArtist attaches an artist to a studio. Only the studio owner may
// do this; the ownership check walks through the stored studio.
func (s *Service) AddArtist(ctx context.Context, studioID, actorID int64, req CreateArtistRequest) (*domain.Artist, error) {
	studio, err := s.studios.GetByID(ctx, studioID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if studio.OwnerID != actorID {
		return nil, ErrForbidden
	}

	artist := &domain.Artist{
		StudioID:  studioID,
		UserID:    req.UserID,
		Name:      req.Name,
		Specialty: req.Specialty,
		Bio:       req.Bio,
		Active:    true,
	}
	if err := s.artists.Create(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}

func (s *Service) GetArtist(ctx context.Context, id int64) (*domain.Artist, error) {
	artist, err := s.artists.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return artist, nil
}

func (s *Service) ListArtists(ctx context.Context, studioID int64) ([]domain.Artist, error) {
	return s.artists.ListByStudio(ctx, studioID)
}
