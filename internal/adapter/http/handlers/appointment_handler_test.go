package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"clinic_api/internal/adapter/http/handlers/mocks"
	"clinic_api/internal/domain/availability"
	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

const bookingBody = `{"name":"Maria","contact":"maria@example.com","date":"2025-03-10","time":"18:00","services":["consult"],"message":"checkup","token":"tok"}`

func appointmentRouter(h *AppointmentHandler) *gin.Engine {
	r := gin.New()
	r.POST("/appointments", h.Book)
	r.GET("/appointments/available-slots", h.AvailableSlots)
	r.GET("/admin/appointments", h.List)
	r.GET("/admin/appointments/:id", h.Get)
	r.PUT("/admin/appointments/:id", h.UpdateStatus)
	r.PUT("/admin/appointments/:id/confirm", h.Confirm)
	r.PUT("/admin/appointments/:id/cancel", h.Cancel)
	r.DELETE("/admin/appointments/:id", h.Delete)
	return r
}

func sampleAppointment(status entities.AppointmentStatus) entities.Appointment {
	return entities.Appointment{
		ID:          "a1",
		PatientName: "Maria",
		Contact:     "maria@example.com",
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:        "18:00",
		Services:    []string{"consult"},
		Message:     "checkup",
		Status:      status,
	}
}

func TestAppointmentHandler_Book(t *testing.T) {
	t.Run("created booking is pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().Book(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, in usecase.BookAppointmentInput) (entities.Appointment, error) {
			if in.PatientName != "Maria" || in.CaptchaToken != "tok" || in.Time != "18:00" || len(in.Services) != 1 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleAppointment(entities.AppointmentStatusPending), nil
		})

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPost, "/appointments", bookingBody)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		data := dataOf(t, w)
		if data["status"] != "pending" || data["date"] != "2025-03-10" || data["name"] != "Maria" {
			t.Fatalf("unexpected data: %v", data)
		}
	})

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "slot full", err: usecase.ErrSlotUnavailable, status: http.StatusConflict, code: "SLOT_UNAVAILABLE"},
		{name: "captcha rejected", err: usecase.ErrCaptchaRejected, status: http.StatusBadRequest, code: "CAPTCHA_REJECTED"},
		{name: "captcha unreachable", err: fmt.Errorf("%w: captcha", usecase.ErrDependencyUnavailable), status: http.StatusServiceUnavailable, code: "DEPENDENCY_UNAVAILABLE"},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := mocks.NewMockIAppointmentUseCase(ctrl)
			uc.EXPECT().Book(gomock.Any(), gomock.Any()).Return(entities.Appointment{}, tc.err)

			w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPost, "/appointments", bookingBody)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			body := decodeBody(t, w)
			if body["code"] != tc.code || body["success"] != false {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}

	t.Run("validation error names fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().Book(gomock.Any(), gomock.Any()).Return(entities.Appointment{}, &usecase.ValidationError{Fields: []string{"name", "date"}})

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPost, "/appointments", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		fields, _ := decodeBody(t, w)["fields"].([]any)
		if len(fields) != 2 || fields[0] != "name" || fields[1] != "date" {
			t.Fatalf("unexpected fields: %s", w.Body.String())
		}
	})

	t.Run("malformed json never reaches the use case", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPost, "/appointments", `{`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestAppointmentHandler_AvailableSlots(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIAppointmentUseCase(ctrl)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	uc.EXPECT().Availability(gomock.Any(), "2025-03-10").Return(availability.Calculate(day, nil, 2), nil)

	w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodGet, "/appointments/available-slots?date=2025-03-10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	remaining, _ := dataOf(t, w)["remaining"].(map[string]any)
	if len(remaining) != len(entities.TimeSlots) || remaining["17:00"] != float64(2) {
		t.Fatalf("unexpected availability: %s", w.Body.String())
	}
}

func TestAppointmentHandler_List(t *testing.T) {
	t.Run("passes the parsed filter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, f entities.AppointmentFilter) ([]entities.Appointment, error) {
			if f.Status != entities.AppointmentStatusPending || f.From.IsZero() || !f.To.IsZero() {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []entities.Appointment{sampleAppointment(entities.AppointmentStatusPending)}, nil
		})

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodGet, "/admin/appointments?status=Pending&from=2025-03-01", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("bad date is rejected before the use case", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodGet, "/admin/appointments?to=March", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, usecase.ErrInvalidStatus)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodGet, "/admin/appointments?status=done", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestAppointmentHandler_GetIncludesLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIAppointmentUseCase(ctrl)
	fin := mocks.NewMockIFinanceUseCase(ctrl)
	uc.EXPECT().GetByID(gomock.Any(), "a1").Return(sampleAppointment(entities.AppointmentStatusConfirmed), nil)
	fin.EXPECT().ListByAppointment(gomock.Any(), "a1").Return([]entities.FinanceRecord{
		{ID: "f1", AppointmentID: "a1", Amount: decimal.RequireFromString("150"), PaymentMethod: entities.PaymentMethodCash, Status: entities.FinanceStatusPending},
	}, nil)

	w := doJSON(appointmentRouter(NewAppointmentHandler(uc, fin)), http.MethodGet, "/admin/appointments/a1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := dataOf(t, w)
	finances, _ := data["finances"].([]any)
	if data["id"] != "a1" || len(finances) != 1 {
		t.Fatalf("unexpected detail: %s", w.Body.String())
	}
	if finances[0].(map[string]any)["amount"] != "150.00" {
		t.Fatalf("unexpected amount: %s", w.Body.String())
	}
}

func TestAppointmentHandler_StatusChanges(t *testing.T) {
	t.Run("update status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().UpdateStatus(gomock.Any(), "a1", "confirmed").Return(sampleAppointment(entities.AppointmentStatusConfirmed), nil)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPut, "/admin/appointments/a1", `{"status":"confirmed"}`)
		if w.Code != http.StatusOK || dataOf(t, w)["status"] != "confirmed" {
			t.Fatalf("expected confirmed, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPut, "/admin/appointments/a1", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("confirm unknown", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().Confirm(gomock.Any(), "nope").Return(entities.Appointment{}, usecase.ErrAppointmentNotFound)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPut, "/admin/appointments/nope/confirm", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().Cancel(gomock.Any(), "a1").Return(sampleAppointment(entities.AppointmentStatusCancelled), nil)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodPut, "/admin/appointments/a1/cancel", "")
		if w.Code != http.StatusOK || dataOf(t, w)["status"] != "cancelled" {
			t.Fatalf("expected cancelled, got %d %s", w.Code, w.Body.String())
		}
	})
}

func TestAppointmentHandler_Delete(t *testing.T) {
	t.Run("refused with ledger entries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().Delete(gomock.Any(), "a1").Return(usecase.ErrAppointmentHasLedgerEntries)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodDelete, "/admin/appointments/a1", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("deleted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		uc.EXPECT().Delete(gomock.Any(), "a1").Return(nil)

		w := doJSON(appointmentRouter(NewAppointmentHandler(uc, nil)), http.MethodDelete, "/admin/appointments/a1", "")
		if w.Code != http.StatusOK || decodeBody(t, w)["success"] != true {
			t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
		}
	})
}
