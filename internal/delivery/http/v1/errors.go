package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tracker/internal/services"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidID          = errors.New("invalid id")
)

type pageError struct {
	Code    int
	Message string
}

func newPageError(code int, message string) pageError {
	return pageError{
		Code:    code,
		Message: message,
	}
}

func (e pageError) Error() string {
	return e.Message
}

func newStatusTextError(status int) pageError {
	return newPageError(status, http.StatusText(status))
}

func newNotFoundError() pageError {
	return newPageError(http.StatusNotFound, "The requested page was not found.")
}

func newBadRequestError(message string) pageError {
	return newPageError(http.StatusBadRequest, message)
}

// abort renders the error page and stops the handler chain.
func (h *handlerImpl) abort(c *gin.Context, err pageError) {
	name := "error.html"
	if err.Code == http.StatusNotFound {
		name = "not_found.html"
	}
	h.render(c, err.Code, name, gin.H{
		"Title": http.StatusText(err.Code),
		"Error": err,
	})
	c.Abort()
}

// abortWithServiceError maps not-found sentinels to the 404 page and
// everything else to a logged 500.
func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		h.abort(c, newNotFoundError())
	default:
		h.logger.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDCtxKey)).
			Msg(msg)
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

// asValidationError reports whether err carries form errors.
func asValidationError(err error) (*services.ValidationError, bool) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// parseIDParam reads a positive integer path parameter. Malformed ids
// are reported as not found.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
