package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clearplot/internal/auth"
	"clearplot/internal/domain"
	"clearplot/internal/service"
	"clearplot/internal/storage"
	"clearplot/internal/upstream"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func newHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, Code: code}
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrUserAlreadyExists, http.StatusBadRequest, "USER_EXISTS"},
	{service.ErrInvalidPassword, http.StatusBadRequest, "INVALID_PASSWORD"},
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{service.ErrPropertyNotFound, http.StatusNotFound, "PROPERTY_NOT_FOUND"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrInvalidProfileToken, http.StatusUnauthorized, "INVALID_PROFILE_TOKEN"},
	{auth.ErrMissingToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{storage.ErrNotFound, http.StatusNotFound, "IMAGE_NOT_FOUND"},
	{storage.ErrInvalidName, http.StatusBadRequest, "INVALID_IMAGE_NAME"},
	{upstream.ErrNotConfigured, http.StatusServiceUnavailable, "UPSTREAM_NOT_CONFIGURED"},
	{upstream.ErrUnavailable, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unknown becomes a
// 500 without detail.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return newHTTPError(http.StatusBadRequest, verr.Error(), "VALIDATION_ERROR")
	}
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			msg := entry.err.Error()
			if entry.status == http.StatusBadGateway || entry.status == http.StatusServiceUnavailable {
				msg = err.Error()
			}
			return newHTTPError(entry.status, msg, entry.code)
		}
	}
	return newHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// fail writes the mapped error and logs server side failures with their detail.
func fail(c *gin.Context, err error) {
	httpErr := MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		requestLogger(c).WithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(httpErr.StatusCode, ErrorResponse{Error: httpErr.Message, Code: httpErr.Code})
}
