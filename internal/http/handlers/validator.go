package handlers

import (
	"metaladmin/internal/forms"

	"github.com/labstack/echo/v4"
)

// CustomValidator plugs internal/forms into echo, so c.Validate failures
// answer with per-field errors.
type CustomValidator struct{}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	return forms.Validate(i).Err()
}

// NewValidator returns the validator the server installs on echo.
func NewValidator() echo.Validator {
	return &CustomValidator{}
}
