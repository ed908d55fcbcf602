package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"metaladmin/internal/services"
	"metaladmin/pkg/models"

	"github.com/labstack/echo/v4"
)

// maxChangesSize bounds a batch of calculation cell edits.
const maxChangesSize = 1 << 20

type CalculationHandler struct {
	calculationService *services.CalculationService
}

func NewCalculationHandler(calculationService *services.CalculationService) *CalculationHandler {
	return &CalculationHandler{calculationService: calculationService}
}

// Get godoc
// @Summary Service calculation tables
// @Tags calculations
// @Produce json
// @Success 200 {object} models.ServiceCalculationConfig
// @Router /calculations [get]
// @Security BearerAuth
func (h *CalculationHandler) Get(c echo.Context) error {
	cfg, err := h.calculationService.Get(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to fetch calculation tables")
	}
	return c.JSON(http.StatusOK, cfg)
}

// Preview godoc
// @Summary Apply cell edits to a calculation table without saving
// @Description Cells whose baseline price is zero are not applicable and come back in "rejected"
// @Tags calculations
// @Accept json
// @Produce json
// @Param type path string true "rebar, cutting or bending"
// @Param changes body calc.Changes[models.RebarLabour] true "Cell, labour and margin edits"
// @Success 200 {object} services.TableResult
// @Failure 422 {object} ErrorResponse
// @Router /calculations/{type}/preview [post]
// @Security BearerAuth
func (h *CalculationHandler) Preview(c echo.Context) error {
	kind, raw, err := readChanges(c)
	if err != nil {
		return respondError(c, err, "invalid changes")
	}
	res, err := h.calculationService.Preview(c.Request().Context(), kind, raw)
	if err != nil {
		return respondError(c, err, "failed to apply changes")
	}
	return c.JSON(http.StatusOK, res)
}

// Submit godoc
// @Summary Save a calculation table
// @Description Applies the edits and replaces the whole table; nothing is sent when a cell is rejected
// @Tags calculations
// @Accept json
// @Produce json
// @Param type path string true "rebar, cutting or bending"
// @Param changes body calc.Changes[models.RebarLabour] true "Cell, labour and margin edits"
// @Success 200 {object} ToastResponse
// @Failure 422 {object} ErrorResponse
// @Router /calculations/{type} [put]
// @Security BearerAuth
func (h *CalculationHandler) Submit(c echo.Context) error {
	kind, raw, err := readChanges(c)
	if err != nil {
		return respondToastError(c, err, "invalid changes")
	}
	res, err := h.calculationService.Submit(c.Request().Context(), kind, raw)
	if err != nil {
		return respondToastError(c, err, "failed to save calculation table")
	}
	return respondToast(c, http.StatusOK, "Prices saved", res)
}

func readChanges(c echo.Context) (models.ServiceKind, json.RawMessage, error) {
	kind, err := models.ParseServiceKind(c.Param("type"))
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxChangesSize))
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return kind, body, nil
}
