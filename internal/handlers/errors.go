package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"userapi/internal/common"
	"userapi/internal/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const serverErrorDetail = "A server error occurred."

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorHandler renders handler errors as JSON. It replaces echo's default HTTPErrorHandler.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Token")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

func errorResponse(err error) (int, interface{}) {
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, verrs
	}

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		errs := validation.NewErrors()
		errs.AddNonField(common.ErrInvalidCredentials.Error())
		return http.StatusBadRequest, errs
	case errors.Is(err, common.ErrInvalidUserID):
		return http.StatusBadRequest, ErrorResponse{Detail: common.ErrInvalidUserID.Error()}
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: common.ErrNotFound.Error()}
	}

	for _, authErr := range []error{
		common.ErrNotAuthenticated,
		common.ErrInvalidToken,
		common.ErrUserInactive,
		common.ErrTokenHeaderNoCredentials,
		common.ErrTokenHeaderSpaces,
	} {
		if errors.Is(err, authErr) {
			return http.StatusUnauthorized, ErrorResponse{Detail: authErr.Error()}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Code >= http.StatusInternalServerError {
			return he.Code, ErrorResponse{Detail: serverErrorDetail}
		}
		if msg, ok := he.Message.(string); ok {
			return he.Code, ErrorResponse{Detail: msg}
		}
		return he.Code, ErrorResponse{Detail: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, ErrorResponse{Detail: serverErrorDetail}
}
