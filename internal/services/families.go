package services

import (
	"context"

	"metaladmin/internal/cache"
	"metaladmin/internal/forms"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

type FamilyService struct {
	client *upstream.Client
	cache  *cache.Cache
	opts   cache.Options
}

func NewFamilyService(client *upstream.Client, c *cache.Cache, opts cache.Options) *FamilyService {
	return &FamilyService{client: client, cache: c, opts: queryOptions(opts)}
}

func (s *FamilyService) List(ctx context.Context) ([]models.Family, error) {
	return cache.Query(ctx, s.cache, scopedKey(ctx, ResourceFamilies, nil), s.opts, s.client.ListFamilies)
}

func (s *FamilyService) Create(ctx context.Context, f models.Family, image *upstream.FilePart) (*models.Family, error) {
	if errs := forms.Validate(f); errs != nil {
		return nil, errs
	}
	created, err := s.client.CreateFamily(ctx, f, image)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	log.Info().Str("family_id", created.ID).Msg("Family created")
	return created, nil
}

func (s *FamilyService) Update(ctx context.Context, id string, f models.Family, image *upstream.FilePart) (*models.Family, error) {
	f.ID = id
	if errs := forms.Validate(f); errs != nil {
		return nil, errs
	}
	updated, err := s.client.UpdateFamily(ctx, id, f, image)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return updated, nil
}

func (s *FamilyService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteFamily(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	log.Info().Str("family_id", id).Msg("Family deleted")
	return nil
}

// Products embed their family, so family changes drop both.
func (s *FamilyService) invalidate() {
	s.cache.Invalidate(ResourceFamilies)
	s.cache.Invalidate(ResourceProducts)
}
