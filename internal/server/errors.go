package server

import (
	"errors"
	"net/http"
	"strings"

	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, withdrawaldomain.ErrUnauthorized):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
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

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isWalletValidationError(err),
		isCommissionValidationError(err),
		isWithdrawalValidationError(err):
		return true
	default:
		return false
	}
}

// State-machine and lock violations are conflicts: the request was well
// formed, the resource just is not in a state that allows it.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, withdrawaldomain.ErrInvalidState),
		errors.Is(err, withdrawaldomain.ErrCommissionAlreadyLocked),
		errors.Is(err, withdrawaldomain.ErrCommissionNotEligible),
		errors.Is(err, withdrawaldomain.ErrReconciliationConflict),
		errors.Is(err, commissiondomain.ErrInvalidState),
		errors.Is(err, commissiondomain.ErrLocked),
		errors.Is(err, walletdomain.ErrAccountFrozen),
		errors.Is(err, walletdomain.ErrInsufficientBalance),
		errors.Is(err, walletdomain.ErrNotReversible):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, walletdomain.ErrAccountNotFound),
		errors.Is(err, walletdomain.ErrTransactionNotFound),
		errors.Is(err, commissiondomain.ErrNotFound),
		errors.Is(err, withdrawaldomain.ErrNotFound),
		errors.Is(err, payout.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func isWalletValidationError(err error) bool {
	switch err {
	case walletdomain.ErrInvalidAmount,
		walletdomain.ErrInvalidOwnerType,
		walletdomain.ErrInvalidOwnerID,
		walletdomain.ErrSameAccount,
		walletdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}

func isCommissionValidationError(err error) bool {
	switch err {
	case commissiondomain.ErrInvalidAmount,
		commissiondomain.ErrInvalidConsultant,
		commissiondomain.ErrInvalidType:
		return true
	default:
		return false
	}
}

func isWithdrawalValidationError(err error) bool {
	switch err {
	case withdrawaldomain.ErrInvalidAmount,
		withdrawaldomain.ErrInvalidPaymentMethod,
		withdrawaldomain.ErrNoCommissions,
		withdrawaldomain.ErrReasonRequired:
		return true
	default:
		return false
	}
}
