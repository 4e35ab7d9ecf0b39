package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic_api/internal/adapter/http/handlers/mocks"
	"clinic_api/internal/adapter/http/middleware"
	"clinic_api/internal/adapter/persistence/memory"
	"clinic_api/internal/domain/entities"
	"clinic_api/internal/infrastructure/cache"
	"clinic_api/internal/infrastructure/session"
	"clinic_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(t *testing.T) *usecase.AuthUseCase {
	t.Helper()
	tokens, err := session.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return usecase.NewAuthUseCase(usecase.AdminCredentials{Username: "admin", Password: "secret"}, tokens, cache.NewMemoryRevocationStore())
}

func send(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No expectations: any use case call fails the test.
	appointments := mocks.NewMockIAppointmentUseCase(ctrl)
	finances := mocks.NewMockIFinanceUseCase(ctrl)

	router := NewRouter(Dependencies{Appointments: appointments, Finances: finances, Auth: newAuth(t)}, Options{})

	cases := []struct{ method, path, body string }{
		{http.MethodGet, "/api/admin/me", ""},
		{http.MethodGet, "/api/admin/appointments", ""},
		{http.MethodGet, "/api/admin/appointments/a1", ""},
		{http.MethodPut, "/api/admin/appointments/a1", `{"status":"confirmed"}`},
		{http.MethodPut, "/api/admin/appointments/a1/confirm", ""},
		{http.MethodPut, "/api/admin/appointments/a1/cancel", ""},
		{http.MethodDelete, "/api/admin/appointments/a1", ""},
		{http.MethodGet, "/api/admin/finances", ""},
		{http.MethodPost, "/api/admin/finances", `{"appointmentId":"a1","amount":10,"paymentMethod":"cash"}`},
		{http.MethodGet, "/api/admin/finances/summary", ""},
		{http.MethodGet, "/api/admin/finances/export", ""},
		{http.MethodGet, "/api/admin/finances/f1", ""},
		{http.MethodPut, "/api/admin/finances/f1", `{"status":"completed"}`},
	}
	for _, tc := range cases {
		w := send(router, tc.method, tc.path, tc.body, &http.Cookie{Name: middleware.AdminCookieName, Value: "forged"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestRoutes_BookingAndAdminFlow(t *testing.T) {
	appointmentRepo := memory.NewAppointmentRepository()
	financeRepo := memory.NewFinanceRepository(appointmentRepo)
	deps := Dependencies{
		Appointments: usecase.NewAppointmentUseCase(appointmentRepo, financeRepo, nil, usecase.AppointmentUseCaseConfig{
			MaxSlotsPerTime: 1,
			CaptchaDisabled: true,
		}),
		Finances:       usecase.NewFinanceUseCase(financeRepo, appointmentRepo, nil),
		Auth:           newAuth(t),
		BookingLimiter: cache.NewMemoryLimiter(10, time.Minute),
		LoginLimiter:   cache.NewMemoryLimiter(10, time.Minute),
	}
	router := NewRouter(deps, Options{CORSOrigins: []string{"http://localhost:3000"}})

	if w := send(router, http.MethodGet, "/api/ping", ""); w.Code != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", w.Code)
	}

	booking := `{"name":"Maria","contact":"maria@example.com","date":"2025-03-10","time":"18:00","services":["consult"],"message":"checkup"}`
	w := send(router, http.MethodPost, "/api/appointments", booking)
	if w.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Data.Status != "pending" {
		t.Fatalf("expected pending booking, got %s", w.Body.String())
	}

	if w := send(router, http.MethodPost, "/api/appointments", booking); w.Code != http.StatusConflict {
		t.Fatalf("second booking: expected 409, got %d", w.Code)
	}

	w = send(router, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AdminCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("login did not set the session cookie")
	}

	w = send(router, http.MethodPost, "/api/admin/finances", `{"appointmentId":"`+created.Data.ID+`","amount":"100.10","paymentMethod":"cash"}`, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("record payment: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	if w := send(router, http.MethodDelete, "/api/admin/appointments/"+created.Data.ID, "", cookie); w.Code != http.StatusConflict {
		t.Fatalf("delete with ledger entries: expected 409, got %d", w.Code)
	}

	if w := send(router, http.MethodPut, "/api/admin/appointments/"+created.Data.ID+"/cancel", "", cookie); w.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", w.Code)
	}
	w = send(router, http.MethodGet, "/api/appointments/available-slots?date=2025-03-10", "")
	var av struct {
		Data struct {
			Remaining map[string]int `json:"remaining"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &av)
	if av.Data.Remaining["18:00"] != 1 {
		t.Fatalf("cancel should free the seat, got %s", w.Body.String())
	}

	w = send(router, http.MethodGet, "/api/admin/finances/summary", "", cookie)
	var summary struct {
		Data struct {
			Total string `json:"total"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &summary)
	if summary.Data.Total != "100.10" {
		t.Fatalf("unexpected summary: %s", w.Body.String())
	}

	if w := send(router, http.MethodPost, "/api/admin/logout", "", cookie); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := send(router, http.MethodGet, "/api/admin/me", "", cookie); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401, got %d", w.Code)
	}

	items, _ := appointmentRepo.List(context.Background(), entities.AppointmentFilter{})
	if len(items) != 1 || items[0].Status != entities.AppointmentStatusCancelled {
		t.Fatalf("unexpected stored appointments: %+v", items)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}
