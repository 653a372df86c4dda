package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/services"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
	errInvalidQuery            = errors.New("invalid query parameters")
	errAdminRequired           = errors.New("admin access required")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func newUnprocessableError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

// abortWithServiceError maps task domain errors to API errors.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrSubTaskNotFound),
		errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrNoticeNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrInvalidTaskStage),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrInvalidActivityType),
		errors.Is(err, services.ErrInvalidTrashAction),
		errors.Is(err, services.ErrUnknownTeamMember):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, tracking.ErrMalformedInput):
		abort(c, newUnprocessableError(err.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
