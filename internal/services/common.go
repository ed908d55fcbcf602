package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"

	"metaladmin/internal/cache"
	"metaladmin/internal/listview"
	"metaladmin/internal/upstream"
)

// Cache resources. Mutations invalidate the resource they touch.
const (
	ResourceProducts     = "products"
	ResourceOrders       = "orders"
	ResourcePayments     = "payments"
	ResourceFamilies     = "families"
	ResourceShipping     = "shipping"
	ResourceTemplates    = "templates"
	ResourceCalculations = "calculations"
	ResourceDashboard    = "dashboard"
)

// ListResponse is a list page together with its pagination view.
type ListResponse[T any] struct {
	Data       []T                 `json:"data"`
	Pagination listview.Pagination `json:"pagination"`
}

func newListResponse[T any](q listview.Query, res listview.Result[T]) *ListResponse[T] {
	return &ListResponse[T]{
		Data:       res.Items,
		Pagination: listview.NewPagination(q.Page, q.PageSize, res.Total, res.TotalPages),
	}
}

// normalizeQuery applies the list-view defaults to a query from a request.
func normalizeQuery(q listview.Query) listview.Query {
	if q.Page < 1 {
		q.Page = 1
	}
	q.PageSize = listview.NormalizePageSize(q.PageSize)
	return q
}

func upstreamQuery(q listview.Query) upstream.ListQuery {
	return upstream.ListQuery{Search: q.Search, Page: q.Page, PageSize: q.PageSize}
}

func queryParams(q listview.Query) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// scopedKey builds a cache key private to the caller's credentials, so one
// admin's cached answers are never served to a request with another token.
func scopedKey(ctx context.Context, resource string, params url.Values) cache.Key {
	if params == nil {
		params = url.Values{}
	}
	if token := upstream.TokenFrom(ctx); token != "" {
		sum := sha256.Sum256([]byte(token))
		params.Set("scope", hex.EncodeToString(sum[:8]))
	}
	return cache.NewKey(resource, params)
}

// queryOptions are the cache options of list and detail reads.
func queryOptions(base cache.Options) cache.Options {
	base.IsRetryable = upstream.IsRetryable
	return base
}
