package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"metaladmin/internal/bulkupdate"
	"metaladmin/internal/calc"
	"metaladmin/internal/forms"
	"metaladmin/internal/listview"
	"metaladmin/internal/services"
	"metaladmin/internal/templates"
	"metaladmin/internal/upstream"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is the notification the dashboard shows after a mutation.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

// ToastResponse answers a mutation.
type ToastResponse struct {
	Toast Toast       `json:"toast"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Fields   forms.FieldErrors `json:"fields,omitempty"`
	Rejected []calc.CellError  `json:"rejected,omitempty"`
	Toast    *Toast            `json:"toast,omitempty"`
}

// maxImageSize bounds image parts of product, family and template forms.
const maxImageSize = 5 << 20

func errorResponse(err error, fallback string) (int, ErrorResponse) {
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "please fix the highlighted fields", Fields: fieldErrs}
	}
	var rejected *services.RejectedCellsError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "some prices could not be applied", Rejected: rejected.Cells}
	}
	var apiErr *upstream.APIError
	var transportErr *upstream.TransportError
	if errors.As(err, &apiErr) || errors.As(err, &transportErr) {
		return upstream.StatusOf(err), ErrorResponse{Error: upstream.UserMessage(err, fallback)}
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.Is(err, bulkupdate.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()}
	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()}
	case errors.Is(err, services.ErrUnknownView),
		errors.Is(err, services.ErrUnknownPeriod),
		errors.Is(err, services.ErrNoOrdersSelected),
		errors.Is(err, services.ErrNothingToSave),
		errors.Is(err, services.ErrNotAnImage),
		errors.Is(err, services.ErrNotAPreviewKey),
		errors.Is(err, bulkupdate.ErrUnsupportedFile),
		errors.Is(err, bulkupdate.ErrEmptyFile),
		errors.Is(err, calc.ErrRowOutOfRange),
		errors.Is(err, calc.ErrNotApplicable),
		errors.Is(err, calc.ErrUnknownColumn),
		errors.Is(err, templates.ErrMinimumRows):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, ErrorResponse{Error: fmt.Sprint(httpErr.Message)}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: fallback}
}

// respondError maps err to a status and a JSON error body.
func respondError(c echo.Context, err error, fallback string) error {
	status, body := errorResponse(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	}
	return c.JSON(status, body)
}

// respondToastError is respondError for mutations: the body carries an error
// toast with the server message.
func respondToastError(c echo.Context, err error, fallback string) error {
	status, body := errorResponse(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	}
	body.Toast = &Toast{Kind: ToastError, Message: body.Error}
	return c.JSON(status, body)
}

func respondToast(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, ToastResponse{Toast: Toast{Kind: ToastSuccess, Message: message}, Data: data})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// listQuery reads search, page and pageSize query parameters. Invalid numbers
// fall back to the list defaults.
func listQuery(c echo.Context) listview.Query {
	pageSize := cast.ToInt(c.QueryParam("pageSize"))
	if pageSize == 0 {
		pageSize = cast.ToInt(c.QueryParam("limit"))
	}
	return listview.Query{
		Search:   c.QueryParam("search"),
		Page:     cast.ToInt(c.QueryParam("page")),
		PageSize: pageSize,
	}
}

// upload is a file part read from a multipart request.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// formFile reads the file part named field. A missing part yields nil and no
// error; a part larger than max yields bulkupdate.ErrFileTooLarge.
func formFile(c echo.Context, field string, max int64) (*upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	return readUpload(fh, max)
}

func readUpload(fh *multipart.FileHeader, max int64) (*upload, error) {
	if fh.Size > max {
		return nil, bulkupdate.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > max {
		return nil, bulkupdate.ErrFileTooLarge
	}
	return &upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

func (u *upload) part(field string) upstream.FilePart {
	return upstream.FilePart{
		Field:       field,
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Reader:      bytes.NewReader(u.Data),
	}
}

// bindData decodes the JSON entity of a request. Multipart requests carry it
// in a "data" part next to the files; other requests send it as the body.
func bindData(c echo.Context, v interface{}) error {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return c.Bind(v)
	}
	raw := c.FormValue("data")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing data part")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data part")
	}
	return nil
}
