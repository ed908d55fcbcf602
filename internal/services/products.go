package services

import (
	"context"
	"net/url"

	"metaladmin/internal/bulkupdate"
	"metaladmin/internal/cache"
	"metaladmin/internal/forms"
	"metaladmin/internal/listview"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

type ProductService struct {
	client *upstream.Client
	cache  *cache.Cache
	opts   cache.Options
}

func NewProductService(client *upstream.Client, c *cache.Cache, opts cache.Options) *ProductService {
	return &ProductService{client: client, cache: c, opts: queryOptions(opts)}
}

// Fetch loads one page of products through the cache. It is the fetcher of
// product list views.
func (s *ProductService) Fetch(ctx context.Context, q listview.Query) (listview.Result[models.Product], error) {
	key := scopedKey(ctx, ResourceProducts, queryParams(q))
	env, err := cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) (*models.ListEnvelope[models.Product], error) {
		return s.client.ListProducts(ctx, upstreamQuery(q))
	})
	if err != nil {
		return listview.Result[models.Product]{}, err
	}
	return listview.Result[models.Product]{Items: env.Data, Total: env.Total, TotalPages: env.TotalPages}, nil
}

// List returns a product page with its pagination view.
func (s *ProductService) List(ctx context.Context, q listview.Query) (*ListResponse[models.Product], error) {
	q = normalizeQuery(q)
	res, err := s.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return newListResponse(q, res), nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	key := scopedKey(ctx, ResourceProducts, url.Values{"id": {id}})
	return cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) (*models.Product, error) {
		return s.client.GetProduct(ctx, id)
	})
}

// Create validates p and posts it with its images. Validation failures are
// returned as forms.FieldErrors.
func (s *ProductService) Create(ctx context.Context, p models.Product, images []upstream.FilePart) (*models.Product, error) {
	if errs := forms.Validate(p); errs != nil {
		return nil, errs
	}
	created, err := s.client.CreateProduct(ctx, p, images...)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ResourceProducts)
	log.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("Product created")
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, p models.Product, images []upstream.FilePart) (*models.Product, error) {
	p.ID = id
	if errs := forms.Validate(p); errs != nil {
		return nil, errs
	}
	updated, err := s.client.UpdateProduct(ctx, id, p, images...)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ResourceProducts)
	log.Info().Str("product_id", id).Msg("Product updated")
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ResourceProducts)
	log.Info().Str("product_id", id).Msg("Product deleted")
	return nil
}

// BulkUpdateService runs spreadsheet uploads through the bulk update
// pipeline.
type BulkUpdateService struct {
	pipeline *bulkupdate.Pipeline
}

func NewBulkUpdateService(client *upstream.Client, c *cache.Cache) *BulkUpdateService {
	return &BulkUpdateService{pipeline: bulkupdate.NewPipeline(client, c)}
}

func (s *BulkUpdateService) Run(ctx context.Context, f bulkupdate.File) (*bulkupdate.Report, error) {
	return s.pipeline.Run(ctx, f)
}
