package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	archivedomain "github.com/smallbiznis/arledger/internal/archive/domain"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
	invoicingdomain "github.com/smallbiznis/arledger/internal/invoicing/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	var validationErr *invoicingdomain.ValidationError
	var formatErr *invoicingdomain.FormatError
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, archivedomain.ErrEmptyDocument),
		errors.Is(err, archivedomain.ErrMissingFilename),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, customerdomain.ErrInvalidID):
		return true
	case errors.As(err, &validationErr),
		errors.As(err, &formatErr):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, invoicingdomain.ErrCustomerNotFound),
		errors.Is(err, invoicingdomain.ErrNoCustomers),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
