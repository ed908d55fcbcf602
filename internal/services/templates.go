package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"metaladmin/internal/cache"
	"metaladmin/internal/templates"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

var ErrNothingToSave = errors.New("no changes to save")

type TemplateService struct {
	client  *upstream.Client
	cache   *cache.Cache
	opts    cache.Options
	pending *cache.Overrides[models.ServiceTemplate]
}

func NewTemplateService(client *upstream.Client, c *cache.Cache, opts cache.Options) *TemplateService {
	return &TemplateService{
		client:  client,
		cache:   c,
		opts:    queryOptions(opts),
		pending: cache.NewOverrides[models.ServiceTemplate](),
	}
}

// identity keys overrides by kind and code; codes are unique per kind only.
func identity(t models.ServiceTemplate) string {
	return string(t.Kind) + "/" + t.Code
}

// List returns the templates of kind with edits in flight overlaid.
func (s *TemplateService) List(ctx context.Context, kind models.ServiceKind) ([]models.ServiceTemplate, error) {
	key := scopedKey(ctx, ResourceTemplates, url.Values{"kind": {string(kind)}})
	list, err := cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) ([]models.ServiceTemplate, error) {
		return s.client.ListTemplates(ctx, kind)
	})
	if err != nil {
		return nil, err
	}
	return cache.Merge(s.pending, list, identity), nil
}

func (s *TemplateService) Get(ctx context.Context, kind models.ServiceKind, code string) (*models.ServiceTemplate, error) {
	key := scopedKey(ctx, ResourceTemplates, url.Values{"kind": {string(kind)}, "code": {code}})
	t, err := cache.Query(ctx, s.cache, key, s.opts, func(ctx context.Context) (*models.ServiceTemplate, error) {
		return s.client.GetTemplate(ctx, kind, code)
	})
	if err != nil {
		return nil, err
	}
	if pending, ok := s.pending.Get(identity(*t)); ok {
		return &pending, nil
	}
	return t, nil
}

func imagePart(img *templates.Image) *upstream.FilePart {
	if img == nil {
		return nil
	}
	return &upstream.FilePart{
		Field:       "image",
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Reader:      bytes.NewReader(img.Data),
	}
}

// Create validates a create form and posts it.
func (s *TemplateService) Create(ctx context.Context, f *templates.Form) (*models.ServiceTemplate, error) {
	f.Mode = templates.ModeCreate
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}
	created, err := s.client.CreateTemplate(ctx, f.Template(), *imagePart(f.Image()))
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ResourceTemplates)
	log.Info().Str("kind", string(f.Kind)).Str("code", created.Code).Msg("Service template created")
	return created, nil
}

// EditResult is the outcome of an edit: the saved template and the edited
// fields that could not be saved.
type EditResult struct {
	Template *models.ServiceTemplate `json:"template"`
	Plan     templates.EditPlan      `json:"plan"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Edit saves an edit form of the template stored under code, calling only the
// endpoints the edit plan asks for.
func (s *TemplateService) Edit(ctx context.Context, kind models.ServiceKind, code string, f *templates.Form) (*EditResult, error) {
	f.Prepare(kind, templates.ModeEdit)
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}

	orig, err := s.client.GetTemplate(ctx, kind, code)
	if err != nil {
		return nil, err
	}
	if f.ImageURL == "" {
		f.ImageURL = orig.ImageURL
	}

	plan := templates.PlanEdit(*orig, f)
	result := &EditResult{Template: orig, Plan: plan}
	for _, field := range plan.Unpersisted {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s changes are not saved when editing a template", field))
	}
	if plan.Empty() {
		if len(plan.Unpersisted) == 0 {
			return nil, ErrNothingToSave
		}
		return result, nil
	}

	next := f.Template()
	tok := s.pending.Apply(identity(*orig), next)
	defer s.pending.Resolve(tok)
	defer s.cache.Invalidate(ResourceTemplates)

	switch {
	case plan.FullUpdate:
		u := upstream.TemplateUpdate{Code: next.Code, Label: next.Label, Dimensions: next.Dimensions}
		updated, err := s.client.UpdateTemplate(ctx, kind, code, u, imagePart(f.Image()))
		if err != nil {
			return nil, err
		}
		result.Template = updated
	case plan.ImageOnly:
		if err := s.client.UpdateTemplateImage(ctx, kind, code, *imagePart(f.Image())); err != nil {
			return nil, err
		}
	case plan.DimensionsOnly:
		if err := s.client.UpdateTemplateDimensions(ctx, kind, code, next.Dimensions); err != nil {
			return nil, err
		}
		result.Template.Dimensions = next.Dimensions
	}

	log.Info().
		Str("kind", string(kind)).
		Str("code", code).
		Bool("full_update", plan.FullUpdate).
		Bool("image_only", plan.ImageOnly).
		Bool("dimensions_only", plan.DimensionsOnly).
		Strs("unpersisted", plan.Unpersisted).
		Msg("Service template edited")
	return result, nil
}

func (s *TemplateService) Delete(ctx context.Context, kind models.ServiceKind, code string) error {
	if err := s.client.DeleteTemplate(ctx, kind, code); err != nil {
		return err
	}
	s.cache.Invalidate(ResourceTemplates)
	log.Info().Str("kind", string(kind)).Str("code", code).Msg("Service template deleted")
	return nil
}
