package handler

import (
	"errors"
	"fmt"
	"net/http"

	"storeauth/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status. Unexpected failures stay
// in the 4xx range.
func statusFor(kind error) int {
	switch kind {
	case service.ErrConflict:
		return http.StatusConflict
	case service.ErrUnauthorized, service.ErrInvalidToken:
		return http.StatusUnauthorized
	case service.ErrAccountNotActive, service.ErrForbidden:
		return http.StatusForbidden
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrPartialSuccess:
		return http.StatusAccepted
	default:
		return http.StatusBadRequest
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return service.ErrUnauthorized.Error()
	case http.StatusForbidden:
		return service.ErrForbidden.Error()
	case http.StatusNotFound:
		return service.ErrNotFound.Error()
	case http.StatusConflict:
		return service.ErrConflict.Error()
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return service.ErrBadRequest.Error()
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, errorResponse{Kind: kindForStatus(status), Message: err.Error()})
}

func writeServiceError(c echo.Context, err error) error {
	kind := service.KindOf(err)
	return c.JSON(statusFor(kind), errorResponse{Kind: kind.Error(), Message: err.Error()})
}

// NewHTTPErrorHandler renders errors returned by handlers and middleware as
// {"kind", "message"}.
func NewHTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{
				Kind:    kindForStatus(he.Code),
				Message: fmt.Sprintf("%v", he.Message),
			})
			return
		}

		var se *service.Error
		if errors.As(err, &se) {
			_ = writeServiceError(c, err)
			return
		}

		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{
			Kind:    kindForStatus(http.StatusInternalServerError),
			Message: "internal server error",
		})
	}
}
