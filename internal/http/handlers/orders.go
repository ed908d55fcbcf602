package handlers

import (
	"fmt"
	"net/http"

	"metaladmin/internal/services"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService   *services.OrderService
	paymentService *services.PaymentService
}

func NewOrderHandler(orderService *services.OrderService, paymentService *services.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

// BulkDeleteOrdersRequest selects the orders to delete.
type BulkDeleteOrdersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// List godoc
// @Summary List orders
// @Tags orders
// @Produce json
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} services.ListResponse[models.Order]
// @Router /orders [get]
// @Security BearerAuth
func (h *OrderHandler) List(c echo.Context) error {
	resp, err := h.orderService.List(c.Request().Context(), listQuery(c))
	if err != nil {
		return respondError(c, err, "failed to fetch orders")
	}
	return c.JSON(http.StatusOK, resp)
}

// BulkDelete godoc
// @Summary Delete the selected orders
// @Tags orders
// @Accept json
// @Produce json
// @Param request body BulkDeleteOrdersRequest true "Order ids"
// @Success 200 {object} ToastResponse
// @Failure 400 {object} ErrorResponse
// @Router /orders/bulk-delete [post]
// @Security BearerAuth
func (h *OrderHandler) BulkDelete(c echo.Context) error {
	var req BulkDeleteOrdersRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondToastError(c, err, "select at least one order")
	}

	n, err := h.orderService.BulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return respondToastError(c, err, "failed to delete orders")
	}
	return respondToast(c, http.StatusOK, fmt.Sprintf("%d orders deleted", n), map[string]int{"deleted": n})
}

// ListPayments godoc
// @Summary List payments
// @Tags payments
// @Produce json
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} services.ListResponse[models.Payment]
// @Router /payments [get]
// @Security BearerAuth
func (h *OrderHandler) ListPayments(c echo.Context) error {
	resp, err := h.paymentService.List(c.Request().Context(), listQuery(c))
	if err != nil {
		return respondError(c, err, "failed to fetch payments")
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPayment godoc
// @Summary Get payment by ID
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} models.Payment
// @Failure 404 {object} ErrorResponse
// @Router /payments/{id} [get]
// @Security BearerAuth
func (h *OrderHandler) GetPayment(c echo.Context) error {
	payment, err := h.paymentService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to fetch payment")
	}
	return c.JSON(http.StatusOK, payment)
}
