package handlers

import (
	"errors"
	"net/http"

	"clinic_api/internal/usecase"
	"clinic_api/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request payload", http.StatusBadRequest)
	errInvalidQuery   = pkg.NewDomainErrorSimple("VALIDATION_ERROR", "Invalid query parameters", http.StatusBadRequest)
)

// mapError translates use case sentinels into the HTTP error body.
func mapError(err error) *pkg.AppError {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return pkg.NewDomainError("VALIDATION_ERROR", "Missing or invalid fields", err, http.StatusBadRequest).WithFields(verr.Fields...)
	case errors.Is(err, usecase.ErrValidation):
		return pkg.NewDomainError("VALIDATION_ERROR", "Missing or invalid fields", err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCaptchaRejected):
		return pkg.NewDomainErrorSimple("CAPTCHA_REJECTED", "Human verification failed", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("INVALID_STATUS", "Invalid status", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		return pkg.NewDomainErrorSimple("APPOINTMENT_NOT_FOUND", "Appointment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrFinanceRecordNotFound):
		return pkg.NewDomainErrorSimple("FINANCE_RECORD_NOT_FOUND", "Finance record not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrSlotUnavailable):
		return pkg.NewDomainErrorSimple("SLOT_UNAVAILABLE", "The selected time slot is fully booked", http.StatusConflict)
	case errors.Is(err, usecase.ErrAppointmentHasLedgerEntries):
		return pkg.NewDomainErrorSimple("APPOINTMENT_HAS_LEDGER_ENTRIES", "Appointment has finance records and cannot be deleted", http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return pkg.NewDomainErrorSimple("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrUnauthenticated):
		return pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrPaymentGatewayBadRequest):
		return pkg.NewDomainErrorSimple("PAYMENT_GATEWAY_BAD_REQUEST", "Payment provider rejected the request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayUnauthorized):
		return pkg.NewDomainErrorSimple("PAYMENT_GATEWAY_UNAUTHORIZED", "Payment provider credentials rejected", http.StatusBadGateway)
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return pkg.NewDomainError("DEPENDENCY_UNAVAILABLE", "A required service is temporarily unavailable", err, http.StatusServiceUnavailable)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func abortWithError(c *gin.Context, err error) {
	appErr := mapError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func abortWithAppError(c *gin.Context, appErr *pkg.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
