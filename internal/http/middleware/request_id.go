package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"metaladmin/internal/upstream"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or assigns a new one. The id is
// echoed back and forwarded on every upstream call made for the request.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, id)
			c.Set("request_id", id)
			c.SetRequest(req.WithContext(upstream.WithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(c echo.Context) string {
	id, _ := c.Get("request_id").(string)
	return id
}
