package upstream

import (
	"context"
	"net/http"

	"metaladmin/pkg/models"
)

func templatesPath(kind models.ServiceKind) string {
	return "/services/" + string(kind) + "/templates"
}

func (c *Client) ListTemplates(ctx context.Context, kind models.ServiceKind) ([]models.ServiceTemplate, error) {
	env, err := list[models.ServiceTemplate](ctx, c, templatesPath(kind), ListQuery{})
	if err != nil {
		return nil, err
	}
	for i := range env.Data {
		env.Data[i].Kind = kind
	}
	return env.Data, nil
}

func (c *Client) GetTemplate(ctx context.Context, kind models.ServiceKind, code string) (*models.ServiceTemplate, error) {
	var t models.ServiceTemplate
	if err := c.do(ctx, request{method: http.MethodGet, path: templatesPath(kind) + "/" + escape(code)}, &t); err != nil {
		return nil, err
	}
	t.Kind = kind
	return &t, nil
}

// CreateTemplate posts the template with its (required) image.
func (c *Client) CreateTemplate(ctx context.Context, t models.ServiceTemplate, image FilePart) (*models.ServiceTemplate, error) {
	req, err := multipartRequest(http.MethodPost, templatesPath(t.Kind), "data", t, image)
	if err != nil {
		return nil, err
	}
	var out models.ServiceTemplate
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	out.Kind = t.Kind
	return &out, nil
}

// TemplateUpdate is the field set the update endpoint persists.
type TemplateUpdate struct {
	Code       string             `json:"code"`
	Label      string             `json:"label"`
	Dimensions []models.Dimension `json:"dimensions"`
}

// UpdateTemplate sends a JSON "data" part and, optionally, a new image.
func (c *Client) UpdateTemplate(ctx context.Context, kind models.ServiceKind, code string, u TemplateUpdate, image *FilePart) (*models.ServiceTemplate, error) {
	var files []FilePart
	if image != nil {
		files = append(files, *image)
	}
	req, err := multipartRequest(http.MethodPut, templatesPath(kind)+"/"+escape(code), "data", u, files...)
	if err != nil {
		return nil, err
	}
	var out models.ServiceTemplate
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	out.Kind = kind
	return &out, nil
}

func (c *Client) UpdateTemplateImage(ctx context.Context, kind models.ServiceKind, code string, image FilePart) error {
	req, err := multipartRequest(http.MethodPatch, templatesPath(kind)+"/"+escape(code)+"/image", "", nil, image)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) UpdateTemplateDimensions(ctx context.Context, kind models.ServiceKind, code string, dims []models.Dimension) error {
	req, err := jsonRequest(http.MethodPatch, templatesPath(kind)+"/"+escape(code)+"/dimensions", map[string][]models.Dimension{"dimensions": dims})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) DeleteTemplate(ctx context.Context, kind models.ServiceKind, code string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: templatesPath(kind) + "/" + escape(code)}, nil)
}

// Calculations

func (c *Client) GetCalculationConfig(ctx context.Context) (*models.ServiceCalculationConfig, error) {
	var cfg models.ServiceCalculationConfig
	if err := c.do(ctx, request{method: http.MethodGet, path: "/services/calculations"}, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SubmitCalculation replaces one table. payload is a
// models.CalculationPayload of the matching row and labour types.
func (c *Client) SubmitCalculation(ctx context.Context, payload interface{}) error {
	req, err := jsonRequest(http.MethodPut, "/services/calculations", payload)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
