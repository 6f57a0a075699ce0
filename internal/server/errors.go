package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accountdomain "github.com/hubblehq/hubble/internal/account/domain"
	"github.com/hubblehq/hubble/internal/auth"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
	plandomain "github.com/hubblehq/hubble/internal/plan/domain"
	"github.com/hubblehq/hubble/internal/sequence"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
	transactiondomain "github.com/hubblehq/hubble/internal/transaction/domain"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
)

type apiError struct {
	status  int
	Message string `json:"message"`
}

func newValidationError(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, Message: message}
}

func invalidRequestError() *apiError {
	return newValidationError("The request body is malformed.")
}

// AbortWithError maps domain errors onto HTTP statuses. Unmapped errors are
// logged and surface as a 500 without leaking detail.
func (s *Server) AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.status, gin.H{"message": apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, accountdomain.ErrAccountNotFound),
		errors.Is(err, plandomain.ErrPlanNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, transactiondomain.ErrTransactionNotFound),
		errors.Is(err, userdomain.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cannot find a record with the specified identifier."})

	case errors.Is(err, accountdomain.ErrDuplicateUserName),
		errors.Is(err, plandomain.ErrDuplicateCode),
		errors.Is(err, userdomain.ErrDuplicateEmail),
		errors.Is(err, invoicedomain.ErrDuplicateInvoiceNumber):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})

	case errors.Is(err, subscriptiondomain.ErrConcurrentModification):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "The record was modified concurrently. Retry the request."})

	case errors.Is(err, subscriptiondomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrInvalidStatusChange):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})

	case errors.Is(err, subscriptiondomain.ErrInvalidAccount),
		errors.Is(err, subscriptiondomain.ErrInvalidPlan),
		errors.Is(err, subscriptiondomain.ErrInvalidQuantity),
		errors.Is(err, subscriptiondomain.ErrInvalidLifecycleState):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})

	case errors.Is(err, userdomain.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "The specified email address or password is invalid."})

	case errors.Is(err, auth.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})

	case errors.Is(err, sequence.ErrAllocationFailure):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Billing is temporarily unavailable. Please retry."})

	default:
		s.log.Error("internal error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "An internal error occurred. Please try again in a few minutes.",
		})
	}
}

func (e *apiError) Error() string { return e.Message }
