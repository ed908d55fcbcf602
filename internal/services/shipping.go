package services

import (
	"context"
	"strings"

	"metaladmin/internal/cache"
	"metaladmin/internal/forms"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

type ShippingService struct {
	client  *upstream.Client
	cache   *cache.Cache
	opts    cache.Options
	pending *cache.Overrides[models.ShippingPolicy]
}

func NewShippingService(client *upstream.Client, c *cache.Cache, opts cache.Options) *ShippingService {
	return &ShippingService{
		client:  client,
		cache:   c,
		opts:    queryOptions(opts),
		pending: cache.NewOverrides[models.ShippingPolicy](),
	}
}

// List returns the policies with unconfirmed edits overlaid.
func (s *ShippingService) List(ctx context.Context) ([]models.ShippingPolicy, error) {
	policies, err := cache.Query(ctx, s.cache, scopedKey(ctx, ResourceShipping, nil), s.opts, s.client.ListShippingPolicies)
	if err != nil {
		return nil, err
	}
	return cache.Merge(s.pending, policies, func(p models.ShippingPolicy) string { return p.Method }), nil
}

// Update replaces the policy of method. The method is the policy's identity
// and cannot be renamed.
func (s *ShippingService) Update(ctx context.Context, method string, p models.ShippingPolicy) (*models.ShippingPolicy, error) {
	p.Method = strings.TrimSpace(method)
	if errs := forms.Validate(p); errs != nil {
		return nil, errs
	}

	tok := s.pending.Apply(p.Method, p)
	defer s.pending.Resolve(tok)

	updated, err := s.client.UpdateShippingPolicy(ctx, p.Method, p)
	s.cache.Invalidate(ResourceShipping)
	if err != nil {
		log.Warn().Err(err).Str("method", p.Method).Msg("Shipping policy update rejected")
		return nil, err
	}
	return updated, nil
}

func (s *ShippingService) Delete(ctx context.Context, method string) error {
	if err := s.client.DeleteShippingPolicy(ctx, method); err != nil {
		return err
	}
	s.cache.Invalidate(ResourceShipping)
	log.Info().Str("method", method).Msg("Shipping policy deleted")
	return nil
}
