package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"metaladmin/pkg/models"
)

func list[T any](ctx context.Context, c *Client, path string, q ListQuery) (*models.ListEnvelope[T], error) {
	var env models.ListEnvelope[T]
	if err := c.do(ctx, request{method: http.MethodGet, path: path, query: q.Values()}, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return &env, nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

// Products

func (c *Client) ListProducts(ctx context.Context, q ListQuery) (*models.ListEnvelope[models.Product], error) {
	return list[models.Product](ctx, c, "/products", q)
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/" + escape(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct sends the product as a JSON "data" part plus its image files.
func (c *Client) CreateProduct(ctx context.Context, p models.Product, images ...FilePart) (*models.Product, error) {
	req, err := multipartRequest(http.MethodPost, "/products", "data", p, images...)
	if err != nil {
		return nil, err
	}
	var created models.Product
	if err := c.do(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p models.Product, images ...FilePart) (*models.Product, error) {
	req, err := multipartRequest(http.MethodPut, "/products/"+escape(id), "data", p, images...)
	if err != nil {
		return nil, err
	}
	var updated models.Product
	if err := c.do(ctx, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/products/" + escape(id)}, nil)
}

// BulkUpdateProducts uploads a spreadsheet in a single request. Validation
// and persistence of every row happen on the API side.
func (c *Client) BulkUpdateProducts(ctx context.Context, filename, contentType string, r io.Reader) (*models.BulkUpdateResult, error) {
	req, err := multipartRequest(http.MethodPost, "/products/bulk-update", "", nil, FilePart{
		Field:       "file",
		Filename:    filename,
		ContentType: contentType,
		Reader:      r,
	})
	if err != nil {
		return nil, err
	}
	var result models.BulkUpdateResult
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Orders

func (c *Client) ListOrders(ctx context.Context, q ListQuery) (*models.ListEnvelope[models.Order], error) {
	return list[models.Order](ctx, c, "/orders", q)
}

func (c *Client) BulkDeleteOrders(ctx context.Context, ids []string) error {
	req, err := jsonRequest(http.MethodPost, "/orders/bulk-delete", map[string][]string{"ids": ids})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// Payments

func (c *Client) ListPayments(ctx context.Context, q ListQuery) (*models.ListEnvelope[models.Payment], error) {
	return list[models.Payment](ctx, c, "/payments", q)
}

func (c *Client) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	if err := c.do(ctx, request{method: http.MethodGet, path: "/payments/" + escape(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Families

func (c *Client) ListFamilies(ctx context.Context) ([]models.Family, error) {
	env, err := list[models.Family](ctx, c, "/families", ListQuery{})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) CreateFamily(ctx context.Context, f models.Family, image *FilePart) (*models.Family, error) {
	return c.sendFamily(ctx, http.MethodPost, "/families", f, image)
}

func (c *Client) UpdateFamily(ctx context.Context, id string, f models.Family, image *FilePart) (*models.Family, error) {
	return c.sendFamily(ctx, http.MethodPut, "/families/"+escape(id), f, image)
}

func (c *Client) sendFamily(ctx context.Context, method, path string, f models.Family, image *FilePart) (*models.Family, error) {
	var files []FilePart
	if image != nil {
		files = append(files, *image)
	}
	req, err := multipartRequest(method, path, "data", f, files...)
	if err != nil {
		return nil, err
	}
	var out models.Family
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFamily(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/families/" + escape(id)}, nil)
}

// Shipping policies are addressed by method name.

func (c *Client) ListShippingPolicies(ctx context.Context) ([]models.ShippingPolicy, error) {
	env, err := list[models.ShippingPolicy](ctx, c, "/shipping-policies", ListQuery{})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) UpdateShippingPolicy(ctx context.Context, method string, p models.ShippingPolicy) (*models.ShippingPolicy, error) {
	req, err := jsonRequest(http.MethodPut, "/shipping-policies/"+escape(method), p)
	if err != nil {
		return nil, err
	}
	var out models.ShippingPolicy
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteShippingPolicy(ctx context.Context, method string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/shipping-policies/" + escape(method)}, nil)
}

// Dashboard

func (c *Client) GetChartData(ctx context.Context, period string) ([]models.ChartSeries, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	var series []models.ChartSeries
	if err := c.do(ctx, request{method: http.MethodGet, path: "/dashboard/charts", query: q}, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func (c *Client) GetSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var s models.DashboardSummary
	if err := c.do(ctx, request{method: http.MethodGet, path: "/dashboard/summary"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
