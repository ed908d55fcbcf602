package handlers

import (
	"net/http"
	"strings"

	"metaladmin/internal/services"
	"metaladmin/internal/templates"
	"metaladmin/pkg/models"

	"github.com/labstack/echo/v4"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// List godoc
// @Summary List service templates of a kind
// @Tags templates
// @Produce json
// @Param kind path string true "rebar, cutting or bending"
// @Success 200 {array} models.ServiceTemplate
// @Failure 400 {object} ErrorResponse
// @Router /templates/{kind} [get]
// @Security BearerAuth
func (h *TemplateHandler) List(c echo.Context) error {
	kind, err := models.ParseServiceKind(c.Param("kind"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	list, err := h.templateService.List(c.Request().Context(), kind)
	if err != nil {
		return respondError(c, err, "failed to fetch templates")
	}
	return c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary Get a service template
// @Tags templates
// @Produce json
// @Param kind path string true "rebar, cutting or bending"
// @Param code path string true "Template code"
// @Success 200 {object} models.ServiceTemplate
// @Failure 404 {object} ErrorResponse
// @Router /templates/{kind}/{code} [get]
// @Security BearerAuth
func (h *TemplateHandler) Get(c echo.Context) error {
	kind, err := models.ParseServiceKind(c.Param("kind"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	t, err := h.templateService.Get(c.Request().Context(), kind, c.Param("code"))
	if err != nil {
		return respondError(c, err, "failed to fetch template")
	}
	return c.JSON(http.StatusOK, t)
}

// Create godoc
// @Summary Create a service template
// @Description Multipart with a "data" JSON form and a required "image" file
// @Tags templates
// @Accept mpfd
// @Produce json
// @Param kind path string true "rebar, cutting or bending"
// @Param data formData string true "Template form (JSON)"
// @Param image formData file true "Template image"
// @Success 201 {object} ToastResponse
// @Failure 422 {object} ErrorResponse
// @Router /templates/{kind} [post]
// @Security BearerAuth
func (h *TemplateHandler) Create(c echo.Context) error {
	form, err := bindTemplateForm(c, templates.ModeCreate)
	if err != nil {
		return respondToastError(c, err, "invalid template form")
	}
	created, err := h.templateService.Create(c.Request().Context(), form)
	if err != nil {
		return respondToastError(c, err, "failed to create template")
	}
	return respondToast(c, http.StatusCreated, "Template created", created)
}

// Update godoc
// @Summary Edit a service template
// @Description Only the endpoints the edit needs are called. Changes to material lists are reported as warnings because they cannot be saved.
// @Tags templates
// @Accept mpfd,json
// @Produce json
// @Param kind path string true "rebar, cutting or bending"
// @Param code path string true "Template code"
// @Param data formData string true "Template form (JSON)"
// @Param image formData file false "New template image"
// @Success 200 {object} ToastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /templates/{kind}/{code} [put]
// @Security BearerAuth
func (h *TemplateHandler) Update(c echo.Context) error {
	form, err := bindTemplateForm(c, templates.ModeEdit)
	if err != nil {
		return respondToastError(c, err, "invalid template form")
	}
	res, err := h.templateService.Edit(c.Request().Context(), form.Kind, c.Param("code"), form)
	if err != nil {
		return respondToastError(c, err, "failed to save template")
	}

	if res.Plan.Empty() {
		return c.JSON(http.StatusOK, ToastResponse{
			Toast: Toast{Kind: ToastError, Message: strings.Join(res.Warnings, "; ")},
			Data:  res,
		})
	}
	message := "Template updated"
	if len(res.Warnings) > 0 {
		message += " (" + strings.Join(res.Warnings, "; ") + ")"
	}
	return respondToast(c, http.StatusOK, message, res)
}

// Validate godoc
// @Summary Validate a template form without saving it
// @Tags templates
// @Accept mpfd,json
// @Produce json
// @Param kind path string true "rebar, cutting or bending"
// @Param data formData string true "Template form (JSON)"
// @Success 200 {object} map[string]bool
// @Failure 422 {object} ErrorResponse
// @Router /templates/{kind}/validate [post]
// @Security BearerAuth
func (h *TemplateHandler) Validate(c echo.Context) error {
	form, err := bindTemplateForm(c, "")
	if err != nil {
		return respondError(c, err, "invalid template form")
	}
	if errs := form.Validate(); errs != nil {
		return respondError(c, errs, "invalid template form")
	}
	return c.JSON(http.StatusOK, map[string]bool{"valid": true})
}

// Delete godoc
// @Summary Delete a service template
// @Tags templates
// @Produce json
// @Param kind path string true "rebar, cutting or bending"
// @Param code path string true "Template code"
// @Success 200 {object} ToastResponse
// @Router /templates/{kind}/{code} [delete]
// @Security BearerAuth
func (h *TemplateHandler) Delete(c echo.Context) error {
	kind, err := models.ParseServiceKind(c.Param("kind"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.templateService.Delete(c.Request().Context(), kind, c.Param("code")); err != nil {
		return respondToastError(c, err, "failed to delete template")
	}
	return respondToast(c, http.StatusOK, "Template deleted", nil)
}

// bindTemplateForm decodes a template form for the kind in the path. An empty
// mode keeps the one the form was sent with, defaulting to create.
func bindTemplateForm(c echo.Context, mode templates.Mode) (*templates.Form, error) {
	kind, err := models.ParseServiceKind(c.Param("kind"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	form := &templates.Form{}
	if err := bindData(c, form); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = form.Mode
		if mode != templates.ModeEdit {
			mode = templates.ModeCreate
		}
	}
	form.Prepare(kind, mode)

	if c.Request().MultipartForm != nil {
		img, err := formFile(c, "image", maxImageSize)
		if err != nil {
			return nil, err
		}
		if img != nil {
			form.SetImage(&templates.Image{Filename: img.Filename, ContentType: img.ContentType, Data: img.Data})
		}
	}
	return form, nil
}
