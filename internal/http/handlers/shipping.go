package handlers

import (
	"net/http"

	"metaladmin/internal/services"
	"metaladmin/pkg/models"

	"github.com/labstack/echo/v4"
)

type ShippingHandler struct {
	shippingService *services.ShippingService
}

func NewShippingHandler(shippingService *services.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// List godoc
// @Summary List shipping policies
// @Tags shipping
// @Produce json
// @Success 200 {array} models.ShippingPolicy
// @Router /shipping [get]
// @Security BearerAuth
func (h *ShippingHandler) List(c echo.Context) error {
	policies, err := h.shippingService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to fetch shipping policies")
	}
	return c.JSON(http.StatusOK, policies)
}

// Update godoc
// @Summary Update the shipping policy of a method
// @Description The method in the path is the policy's identity; a method in the body is ignored
// @Tags shipping
// @Accept json
// @Produce json
// @Param method path string true "Shipping method"
// @Param policy body models.ShippingPolicy true "Policy"
// @Success 200 {object} ToastResponse
// @Failure 422 {object} ErrorResponse
// @Router /shipping/{method} [put]
// @Security BearerAuth
func (h *ShippingHandler) Update(c echo.Context) error {
	var policy models.ShippingPolicy
	if err := c.Bind(&policy); err != nil {
		return badRequest(c, "invalid request body")
	}

	updated, err := h.shippingService.Update(c.Request().Context(), c.Param("method"), policy)
	if err != nil {
		return respondToastError(c, err, "failed to update shipping policy")
	}
	return respondToast(c, http.StatusOK, "Shipping policy updated", updated)
}

// Delete godoc
// @Summary Delete the shipping policy of a method
// @Tags shipping
// @Produce json
// @Param method path string true "Shipping method"
// @Success 200 {object} ToastResponse
// @Router /shipping/{method} [delete]
// @Security BearerAuth
func (h *ShippingHandler) Delete(c echo.Context) error {
	if err := h.shippingService.Delete(c.Request().Context(), c.Param("method")); err != nil {
		return respondToastError(c, err, "failed to delete shipping policy")
	}
	return respondToast(c, http.StatusOK, "Shipping policy deleted", nil)
}
