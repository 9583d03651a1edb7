package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	paymentdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
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
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "invalid_signature",
			Message: "invalid webhook signature",
		}
	case errors.Is(err, paymentdomain.ErrProviderNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "provider_not_found",
			Message: "unknown payment provider",
		}
	case errors.Is(err, orderapi.ErrOrderNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "order_not_found",
			Message: "order not found",
		}
	case errors.Is(err, paymentdomain.ErrRunInFlight):
		return http.StatusConflict, errorPayload{
			Type:    "run_in_flight",
			Message: "a reconciliation run for this order is already active",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrInvalidOrderID),
		errors.Is(err, paymentdomain.ErrInvalidProof),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, cartdomain.ErrInvalidIdentity),
		errors.Is(err, orderapi.ErrInvalidCartRef):
		return true
	default:
		return false
	}
}
