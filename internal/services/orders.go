package services

import (
	"context"
	"errors"
	"net/url"

	"metaladmin/internal/cache"
	"metaladmin/internal/listview"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

var ErrNoOrdersSelected = errors.New("select at least one order")

type OrderService struct {
	client *upstream.Client
	cache  *cache.Cache
	opts   cache.Options
}

func NewOrderService(client *upstream.Client, c *cache.Cache, opts cache.Options) *OrderService {
	return &OrderService{client: client, cache: c, opts: queryOptions(opts)}
}

func (s *OrderService) Fetch(ctx context.Context, q listview.Query) (listview.Result[models.Order], error) {
	key := scopedKey(ctx, ResourceOrders, queryParams(q))
	env, err := cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) (*models.ListEnvelope[models.Order], error) {
		return s.client.ListOrders(ctx, upstreamQuery(q))
	})
	if err != nil {
		return listview.Result[models.Order]{}, err
	}
	return listview.Result[models.Order]{Items: env.Data, Total: env.Total, TotalPages: env.TotalPages}, nil
}

func (s *OrderService) List(ctx context.Context, q listview.Query) (*ListResponse[models.Order], error) {
	q = normalizeQuery(q)
	res, err := s.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return newListResponse(q, res), nil
}

// BulkDelete removes the selected orders in one request. Duplicate ids are
// sent once.
func (s *OrderService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return 0, ErrNoOrdersSelected
	}

	if err := s.client.BulkDeleteOrders(ctx, unique); err != nil {
		return 0, err
	}
	s.cache.Invalidate(ResourceOrders)
	s.cache.Invalidate(ResourceDashboard)
	log.Info().Int("count", len(unique)).Msg("Orders deleted")
	return len(unique), nil
}

type PaymentService struct {
	client *upstream.Client
	cache  *cache.Cache
	opts   cache.Options
}

func NewPaymentService(client *upstream.Client, c *cache.Cache, opts cache.Options) *PaymentService {
	return &PaymentService{client: client, cache: c, opts: queryOptions(opts)}
}

func (s *PaymentService) Fetch(ctx context.Context, q listview.Query) (listview.Result[models.Payment], error) {
	key := scopedKey(ctx, ResourcePayments, queryParams(q))
	env, err := cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) (*models.ListEnvelope[models.Payment], error) {
		return s.client.ListPayments(ctx, upstreamQuery(q))
	})
	if err != nil {
		return listview.Result[models.Payment]{}, err
	}
	return listview.Result[models.Payment]{Items: env.Data, Total: env.Total, TotalPages: env.TotalPages}, nil
}

func (s *PaymentService) List(ctx context.Context, q listview.Query) (*ListResponse[models.Payment], error) {
	q = normalizeQuery(q)
	res, err := s.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return newListResponse(q, res), nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	key := scopedKey(ctx, ResourcePayments, url.Values{"id": {id}})
	return cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) (*models.Payment, error) {
		return s.client.GetPayment(ctx, id)
	})
}
