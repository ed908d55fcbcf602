package app

import (
	"metaladmin/internal/cache"
	"metaladmin/internal/config"
	"metaladmin/internal/services"
	"metaladmin/internal/upstream"

	"github.com/rs/zerolog/log"
)

// Services holds all application services
type Services struct {
	Config       *config.Config
	Client       *upstream.Client
	Cache        *cache.Cache
	Products     *services.ProductService
	BulkUpdate   *services.BulkUpdateService
	Orders       *services.OrderService
	Payments     *services.PaymentService
	Families     *services.FamilyService
	Shipping     *services.ShippingService
	Templates    *services.TemplateService
	Calculations *services.CalculationService
	Dashboard    *services.DashboardService
	Views        *services.ViewSessionService
	Storage      *services.StorageService
}

// NewServices wires every service around one upstream client and one query
// cache.
func NewServices(cfg *config.Config, opts ...upstream.Option) *Services {
	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, opts...)

	defaults := cache.Options{
		StaleTime:  cfg.Cache.StaleTime,
		GCTime:     cfg.Cache.GCTime,
		Retries:    cfg.Cache.Retries,
		RetryDelay: cfg.Cache.RetryDelay,
	}
	queryCache := cache.New(defaults)

	calcOpts := defaults
	calcOpts.StaleTime = cfg.Cache.CalculationStaleTime

	products := services.NewProductService(client, queryCache, defaults)
	orders := services.NewOrderService(client, queryCache, defaults)
	payments := services.NewPaymentService(client, queryCache, defaults)

	// Storage is optional: without a bucket, image previews are disabled.
	storage, err := services.NewStorageService(cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize storage service, image previews disabled")
		storage = nil
	}

	return &Services{
		Config:       cfg,
		Client:       client,
		Cache:        queryCache,
		Products:     products,
		BulkUpdate:   services.NewBulkUpdateService(client, queryCache),
		Orders:       orders,
		Payments:     payments,
		Families:     services.NewFamilyService(client, queryCache, defaults),
		Shipping:     services.NewShippingService(client, queryCache, defaults),
		Templates:    services.NewTemplateService(client, queryCache, defaults),
		Calculations: services.NewCalculationService(client, queryCache, calcOpts),
		Dashboard:    services.NewDashboardService(client, queryCache, defaults),
		Views:        services.NewViewSessionService(products, orders, payments, queryCache, cfg.Views),
		Storage:      storage,
	}
}
