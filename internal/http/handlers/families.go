package handlers

import (
	"net/http"

	"metaladmin/internal/services"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/labstack/echo/v4"
)

type FamilyHandler struct {
	familyService *services.FamilyService
}

func NewFamilyHandler(familyService *services.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// List godoc
// @Summary List product families
// @Tags families
// @Produce json
// @Success 200 {array} models.Family
// @Router /families [get]
// @Security BearerAuth
func (h *FamilyHandler) List(c echo.Context) error {
	families, err := h.familyService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to fetch families")
	}
	return c.JSON(http.StatusOK, families)
}

// Create godoc
// @Summary Create family
// @Description JSON body, or multipart with a "data" JSON part and an "image" file
// @Tags families
// @Accept json,mpfd
// @Produce json
// @Param family body models.Family true "Family data"
// @Success 201 {object} ToastResponse
// @Failure 422 {object} ErrorResponse
// @Router /families [post]
// @Security BearerAuth
func (h *FamilyHandler) Create(c echo.Context) error {
	family, image, err := bindFamily(c)
	if err != nil {
		return respondToastError(c, err, "invalid request body")
	}
	created, err := h.familyService.Create(c.Request().Context(), family, image)
	if err != nil {
		return respondToastError(c, err, "failed to create family")
	}
	return respondToast(c, http.StatusCreated, "Family created", created)
}

// Update godoc
// @Summary Update family
// @Tags families
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Family ID"
// @Param family body models.Family true "Family data"
// @Success 200 {object} ToastResponse
// @Router /families/{id} [put]
// @Security BearerAuth
func (h *FamilyHandler) Update(c echo.Context) error {
	family, image, err := bindFamily(c)
	if err != nil {
		return respondToastError(c, err, "invalid request body")
	}
	updated, err := h.familyService.Update(c.Request().Context(), c.Param("id"), family, image)
	if err != nil {
		return respondToastError(c, err, "failed to update family")
	}
	return respondToast(c, http.StatusOK, "Family updated", updated)
}

// Delete godoc
// @Summary Delete family
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Success 200 {object} ToastResponse
// @Router /families/{id} [delete]
// @Security BearerAuth
func (h *FamilyHandler) Delete(c echo.Context) error {
	if err := h.familyService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondToastError(c, err, "failed to delete family")
	}
	return respondToast(c, http.StatusOK, "Family deleted", nil)
}

func bindFamily(c echo.Context) (models.Family, *upstream.FilePart, error) {
	var family models.Family
	if err := bindData(c, &family); err != nil {
		return family, nil, err
	}
	if c.Request().MultipartForm == nil {
		return family, nil, nil
	}
	img, err := formFile(c, "image", maxImageSize)
	if err != nil || img == nil {
		return family, nil, err
	}
	part := img.part("image")
	return family, &part, nil
}
