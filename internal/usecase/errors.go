package usecase

import (
	"errors"
	"strings"
)

var (
	ErrValidation                  = errors.New("validation failed")
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrFinanceRecordNotFound       = errors.New("finance record not found")
	ErrSlotUnavailable             = errors.New("slot unavailable")
	ErrInvalidStatus               = errors.New("invalid status")
	ErrUnauthenticated             = errors.New("unauthenticated")
	ErrDependencyUnavailable       = errors.New("dependency unavailable")
	ErrCaptchaRejected             = errors.New("captcha verification failed")
	ErrAppointmentHasLedgerEntries = errors.New("appointment has ledger entries")
)

// ValidationError names every field that failed validation. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type fieldErrors []string

func (f *fieldErrors) add(field string) {
	*f = append(*f, field)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
