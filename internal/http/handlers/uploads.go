package handlers

import (
	"net/http"

	"metaladmin/internal/services"

	"github.com/labstack/echo/v4"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

// StagePreview godoc
// @Summary Stage an image preview
// @Description Stores the image under a short-lived key and returns a presigned URL to show it before the form is saved
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Param file formData file true "PNG, JPEG or WebP image"
// @Success 201 {object} services.Preview
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /uploads/preview [post]
// @Security BearerAuth
func (h *UploadHandler) StagePreview(c echo.Context) error {
	file, err := formFile(c, "file", maxImageSize)
	if err != nil {
		return respondError(c, err, "failed to read image")
	}
	if file == nil {
		return badRequest(c, "missing file part")
	}

	preview, err := h.storageService.StagePreview(c.Request().Context(), file.Filename, file.Data)
	if err != nil {
		return respondError(c, err, "failed to stage preview")
	}
	return c.JSON(http.StatusCreated, preview)
}

// DeletePreview godoc
// @Summary Discard a staged image preview
// @Tags uploads
// @Param key query string true "Preview key"
// @Success 204
// @Router /uploads/preview [delete]
// @Security BearerAuth
func (h *UploadHandler) DeletePreview(c echo.Context) error {
	if err := h.storageService.DeletePreview(c.Request().Context(), c.QueryParam("key")); err != nil {
		return respondError(c, err, "failed to delete preview")
	}
	return c.NoContent(http.StatusNoContent)
}
