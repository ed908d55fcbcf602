package handlers

import (
	"net/http"

	"metaladmin/internal/bulkupdate"
	"metaladmin/internal/services"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productService    *services.ProductService
	bulkUpdateService *services.BulkUpdateService
}

func NewProductHandler(productService *services.ProductService, bulkUpdateService *services.BulkUpdateService) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		bulkUpdateService: bulkUpdateService,
	}
}

// List godoc
// @Summary List products
// @Description Paginated product list with optional search
// @Tags products
// @Produce json
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (8, 10, 20, 30, 40 or 50)"
// @Success 200 {object} services.ListResponse[models.Product]
// @Failure 502 {object} ErrorResponse
// @Router /products [get]
// @Security BearerAuth
func (h *ProductHandler) List(c echo.Context) error {
	resp, err := h.productService.List(c.Request().Context(), listQuery(c))
	if err != nil {
		return respondError(c, err, "failed to fetch products")
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [get]
// @Security BearerAuth
func (h *ProductHandler) GetByID(c echo.Context) error {
	product, err := h.productService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to fetch product")
	}
	return c.JSON(http.StatusOK, product)
}

// Create godoc
// @Summary Create product
// @Description JSON body, or multipart with a "data" JSON part and "images" files
// @Tags products
// @Accept json,mpfd
// @Produce json
// @Param product body models.Product true "Product data"
// @Success 201 {object} ToastResponse
// @Failure 422 {object} ErrorResponse
// @Router /products [post]
// @Security BearerAuth
func (h *ProductHandler) Create(c echo.Context) error {
	var product models.Product
	if err := bindData(c, &product); err != nil {
		return respondToastError(c, err, "invalid request body")
	}
	images, err := productImages(c)
	if err != nil {
		return respondToastError(c, err, "failed to read images")
	}

	created, err := h.productService.Create(c.Request().Context(), product, images)
	if err != nil {
		return respondToastError(c, err, "failed to create product")
	}
	return respondToast(c, http.StatusCreated, "Product created", created)
}

// Update godoc
// @Summary Update product
// @Tags products
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.Product true "Product data"
// @Success 200 {object} ToastResponse
// @Failure 422 {object} ErrorResponse
// @Router /products/{id} [put]
// @Security BearerAuth
func (h *ProductHandler) Update(c echo.Context) error {
	var product models.Product
	if err := bindData(c, &product); err != nil {
		return respondToastError(c, err, "invalid request body")
	}
	images, err := productImages(c)
	if err != nil {
		return respondToastError(c, err, "failed to read images")
	}

	updated, err := h.productService.Update(c.Request().Context(), c.Param("id"), product, images)
	if err != nil {
		return respondToastError(c, err, "failed to update product")
	}
	return respondToast(c, http.StatusOK, "Product updated", updated)
}

// Delete godoc
// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ToastResponse
// @Router /products/{id} [delete]
// @Security BearerAuth
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.productService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondToastError(c, err, "failed to delete product")
	}
	return respondToast(c, http.StatusOK, "Product deleted", nil)
}

// BulkUpdate godoc
// @Summary Bulk update products from a spreadsheet
// @Description Upload a .csv or .xlsx file in the "file" part; the answer reconciles the API's counts with the sheet rows
// @Tags products
// @Accept mpfd
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Success 200 {object} ToastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /products/bulk-update [post]
// @Security BearerAuth
func (h *ProductHandler) BulkUpdate(c echo.Context) error {
	file, err := formFile(c, "file", bulkupdate.MaxFileSize)
	if err != nil {
		return respondToastError(c, err, "failed to read spreadsheet")
	}
	if file == nil {
		return respondToastError(c, bulkupdate.ErrEmptyFile, "select a spreadsheet")
	}

	report, err := h.bulkUpdateService.Run(c.Request().Context(), bulkupdate.File{
		Name:        file.Filename,
		ContentType: file.ContentType,
		Data:        file.Data,
	})
	if err != nil {
		return respondToastError(c, err, "bulk update failed")
	}

	kind := ToastSuccess
	if !report.AllSucceeded {
		kind = ToastError
	}
	return c.JSON(http.StatusOK, ToastResponse{Toast: Toast{Kind: kind, Message: report.Message}, Data: report})
}

func productImages(c echo.Context) ([]upstream.FilePart, error) {
	form := c.Request().MultipartForm
	if form == nil {
		return nil, nil
	}
	var parts []upstream.FilePart
	for _, fh := range form.File["images"] {
		img, err := readUpload(fh, maxImageSize)
		if err != nil {
			return nil, err
		}
		parts = append(parts, img.part("images"))
	}
	return parts, nil
}
