package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"userapi/internal/common"
	"userapi/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorResponse(t *testing.T) {
	errs := validation.NewErrors("username")
	errs.Add("username", "This field is required.")

	tests := []struct {
		name   string
		err    error
		status int
		body   interface{}
	}{
		{"validation", fmt.Errorf("create user: %w", errs), http.StatusBadRequest, errs},
		{"not found", fmt.Errorf("lookup: %w", common.ErrNotFound), http.StatusNotFound, ErrorResponse{Detail: "Not found."}},
		{"invalid user id", common.ErrInvalidUserID, http.StatusBadRequest, ErrorResponse{Detail: "Invalid user id."}},
		{"inactive", common.ErrUserInactive, http.StatusUnauthorized, ErrorResponse{Detail: "User inactive or deleted."}},
		{"header spaces", common.ErrTokenHeaderSpaces, http.StatusUnauthorized, ErrorResponse{Detail: "Invalid token header. Token string should not contain spaces."}},
		{"http error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"}},
		{"internal http error", echo.NewHTTPError(http.StatusInternalServerError).SetInternal(errors.New("boom")), http.StatusInternalServerError, ErrorResponse{Detail: serverErrorDetail}},
		{"unknown", errors.New("pool closed"), http.StatusInternalServerError, ErrorResponse{Detail: serverErrorDetail}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body)
		})
	}
}
