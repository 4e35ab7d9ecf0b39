package interfaces

import (
	"context"
	"errors"

	"clinic_api/internal/domain/entities"
)

//go:generate mockgen -source=finance_repository_interface.go -destination=mocks/finance_repository_interface_mock.go -package=mock_interfaces

// ErrAppointmentMissing is returned by Create when the referenced appointment
// no longer exists at write time.
var ErrAppointmentMissing = errors.New("referenced appointment does not exist")

// IFinanceRepository abstracts persistence for FinanceRecord.
//
// Create links the entry to its appointment in the same write, so an appointment
// with entries cannot be deleted concurrently.
//
// Lookups return a zero FinanceRecord (empty ID) when nothing matches.

type IFinanceRepository interface {
	Create(ctx context.Context, r entities.FinanceRecord) (entities.FinanceRecord, error)
	GetByID(ctx context.Context, id string) (entities.FinanceRecord, error)
	List(ctx context.Context, filter entities.FinanceFilter) ([]entities.FinanceRecord, error)
	ListByAppointmentID(ctx context.Context, appointmentID string) ([]entities.FinanceRecord, error)
	UpdateStatus(ctx context.Context, id string, status entities.FinanceStatus, notes *string) (entities.FinanceRecord, error)
}
