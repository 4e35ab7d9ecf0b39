package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic_api/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		Store:            config.StoreMemory,
		MaxSlotsPerTime:  2,
		CaptchaDisabled:  true,
		AdminUsername:    "admin",
		AdminPassword:    "secret",
		JWTTTL:           time.Hour,
		BookingRateLimit: 5,
		LoginRateLimit:   5,
		RateLimitWindow:  time.Minute,
		CORSOrigins:      []string{"http://localhost:3000"},
	}
}

func TestBuildApp_MemoryStore(t *testing.T) {
	t.Setenv("PAYMENT_GATEWAY_MOCK", "true")

	a, err := buildApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer a.Close()

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/appointments/available-slots?date=2030-03-11", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildCaptcha(t *testing.T) {
	cfg := memoryConfig()
	v, err := buildCaptcha(cfg)
	require.NoError(t, err)
	assert.Nil(t, v)

	cfg.CaptchaDisabled = false
	cfg.RecaptchaSecretKey = "s3cret"
	v, err = buildCaptcha(cfg)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestBuildPaymentGateway_MissingTokenDisablesCharges(t *testing.T) {
	t.Setenv("PAYMENT_GATEWAY_MOCK", "")
	t.Setenv("MERCADOPAGO_MOCK", "")

	assert.Nil(t, buildPaymentGateway(memoryConfig()))
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["create-tables"])
}
