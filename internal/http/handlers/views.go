package handlers

import (
	"net/http"

	"metaladmin/internal/listview"
	"metaladmin/internal/services"

	"github.com/labstack/echo/v4"
)

type ViewHandler struct {
	viewService    *services.ViewSessionService
	allowedOrigins []string
}

func NewViewHandler(viewService *services.ViewSessionService, allowedOrigins []string) *ViewHandler {
	return &ViewHandler{
		viewService:    viewService,
		allowedOrigins: allowedOrigins,
	}
}

// ViewResponse is an open list view and its current state.
type ViewResponse struct {
	ID       string      `json:"id"`
	Resource string      `json:"resource"`
	State    interface{} `json:"state"`
}

type SearchRequest struct {
	Search string `json:"search"`
}

type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func viewResponse(sess *services.ViewSession) ViewResponse {
	return ViewResponse{ID: sess.ID, Resource: sess.Resource, State: sess.State()}
}

// Open godoc
// @Summary Open a server-side list view
// @Description Starts a view of products, orders or payments and loads its first page
// @Tags views
// @Accept json
// @Produce json
// @Param resource path string true "products, orders or payments"
// @Param query body listview.Query false "Initial search and page"
// @Success 201 {object} ViewResponse
// @Failure 400 {object} ErrorResponse
// @Router /views/{resource} [post]
// @Security BearerAuth
func (h *ViewHandler) Open(c echo.Context) error {
	var q listview.Query
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&q); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	sess, err := h.viewService.Open(c.Request().Context(), c.Param("resource"), q)
	if err != nil {
		return respondError(c, err, "failed to open view")
	}
	return c.JSON(http.StatusCreated, viewResponse(sess))
}

// Get godoc
// @Summary Current state of a list view
// @Tags views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ViewResponse
// @Failure 404 {object} ErrorResponse
// @Router /views/{id} [get]
// @Security BearerAuth
func (h *ViewHandler) Get(c echo.Context) error {
	sess, err := h.viewService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to fetch view")
	}
	return c.JSON(http.StatusOK, viewResponse(sess))
}

// Search godoc
// @Summary Change the search term of a list view
// @Description The fetch is debounced and goes back to page 1
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body SearchRequest true "Search term"
// @Success 200 {object} ViewResponse
// @Router /views/{id}/search [put]
// @Security BearerAuth
func (h *ViewHandler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	sess, err := h.viewService.Search(c.Request().Context(), c.Param("id"), req.Search)
	if err != nil {
		return respondError(c, err, "failed to search")
	}
	return c.JSON(http.StatusOK, viewResponse(sess))
}

// Page godoc
// @Summary Move a list view to another page or page size
// @Description A page size change goes back to page 1
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body PageRequest true "Page and page size"
// @Success 200 {object} ViewResponse
// @Router /views/{id}/page [put]
// @Security BearerAuth
func (h *ViewHandler) Page(c echo.Context) error {
	var req PageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	sess, err := h.viewService.Page(c.Request().Context(), c.Param("id"), req.Page, req.PageSize)
	if err != nil {
		return respondError(c, err, "failed to change page")
	}
	return c.JSON(http.StatusOK, viewResponse(sess))
}

// Refresh godoc
// @Summary Refetch the current page of a list view
// @Tags views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ViewResponse
// @Router /views/{id}/refresh [post]
// @Security BearerAuth
func (h *ViewHandler) Refresh(c echo.Context) error {
	sess, err := h.viewService.Refresh(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to refresh view")
	}
	return c.JSON(http.StatusOK, viewResponse(sess))
}

// Close godoc
// @Summary Close a list view
// @Tags views
// @Param id path string true "View ID"
// @Success 204
// @Router /views/{id} [delete]
// @Security BearerAuth
func (h *ViewHandler) Close(c echo.Context) error {
	if err := h.viewService.Close(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err, "failed to close view")
	}
	return c.NoContent(http.StatusNoContent)
}
