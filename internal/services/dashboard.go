package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"metaladmin/internal/cache"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"
)

// ChartPeriods are the aggregation periods the charts offer.
var ChartPeriods = map[string]bool{"day": true, "week": true, "month": true, "year": true}

const DefaultChartPeriod = "month"

var ErrUnknownPeriod = errors.New("unknown chart period")

type DashboardService struct {
	client *upstream.Client
	cache  *cache.Cache
	opts   cache.Options
}

func NewDashboardService(client *upstream.Client, c *cache.Cache, opts cache.Options) *DashboardService {
	return &DashboardService{client: client, cache: c, opts: queryOptions(opts)}
}

func (s *DashboardService) Charts(ctx context.Context, period string) ([]models.ChartSeries, error) {
	if period == "" {
		period = DefaultChartPeriod
	}
	if !ChartPeriods[period] {
		return nil, fmt.Errorf("%w %q", ErrUnknownPeriod, period)
	}
	key := scopedKey(ctx, ResourceDashboard, url.Values{"chart": {period}})
	return cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) ([]models.ChartSeries, error) {
		return s.client.GetChartData(ctx, period)
	})
}

func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	key := scopedKey(ctx, ResourceDashboard, url.Values{"summary": {"1"}})
	return cache.Query(ctx, s.cache, key, s.opts, s.client.GetSummary)
}
