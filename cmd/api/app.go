package main

import (
	"context"
	"fmt"

	"clinic_api/internal/adapter/http/routes"
	"clinic_api/internal/adapter/persistence/memory"
	"clinic_api/internal/adapter/persistence/repository"
	"clinic_api/internal/infrastructure/cache"
	"clinic_api/internal/infrastructure/captcha"
	"clinic_api/internal/infrastructure/config"
	"clinic_api/internal/infrastructure/database"
	"clinic_api/internal/infrastructure/payments"
	"clinic_api/internal/infrastructure/session"
	"clinic_api/internal/usecase"
	"clinic_api/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type app struct {
	Router  *gin.Engine
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("[app][cmd] close failed")
		}
	}
}

type stores struct {
	appointments interfaces.IAppointmentRepository
	finances     interfaces.IFinanceRepository
}

type guards struct {
	revoked interfaces.ITokenRevocationStore
	booking cache.Limiter
	login   cache.Limiter
}

// buildApp wires repositories, adapters and use cases into the HTTP router.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	st, err := buildStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	g, rdb, err := buildGuards(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
	}

	verifier, err := buildCaptcha(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := session.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		a.Close()
		return nil, err
	}

	appointments := usecase.NewAppointmentUseCase(st.appointments, st.finances, verifier, usecase.AppointmentUseCaseConfig{
		MaxSlotsPerTime: cfg.MaxSlotsPerTime,
		CaptchaDisabled: cfg.CaptchaDisabled,
	})
	finances := usecase.NewFinanceUseCase(st.finances, st.appointments, buildPaymentGateway(cfg))
	auth := usecase.NewAuthUseCase(usecase.AdminCredentials{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}, tokens, g.revoked)

	a.Router = routes.NewRouter(routes.Dependencies{
		Appointments:   appointments,
		Finances:       finances,
		Auth:           auth,
		BookingLimiter: g.booking,
		LoginLimiter:   g.login,
	}, routes.Options{
		Production:   cfg.IsProduction(),
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.CookieSecure,
	})
	return a, nil
}

func buildStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("[app][store] using in-memory store, data is lost on restart")
		appointments := memory.NewAppointmentRepository()
		return stores{appointments: appointments, finances: memory.NewFinanceRepository(appointments)}, nil
	}
	client, err := database.ConnectDynamoDB(ctx)
	if err != nil {
		return stores{}, fmt.Errorf("connect dynamodb: %w", err)
	}
	return stores{
		appointments: repository.NewAppointmentDynamoRepository(client),
		finances:     repository.NewFinanceDynamoRepository(client),
	}, nil
}

// buildGuards returns Redis-backed revocation and rate limiting when REDIS_ADDR
// is set, and process-local equivalents otherwise.
func buildGuards(ctx context.Context, cfg *config.Config) (guards, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("[app][cache] REDIS_ADDR not set, using in-memory limiter and revocation store")
		return guards{
			revoked: cache.NewMemoryRevocationStore(),
			booking: cache.NewMemoryLimiter(cfg.BookingRateLimit, cfg.RateLimitWindow),
			login:   cache.NewMemoryLimiter(cfg.LoginRateLimit, cfg.RateLimitWindow),
		}, nil, nil
	}
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return guards{}, nil, err
	}
	return guards{
		revoked: cache.NewRedisRevocationStore(rdb),
		booking: cache.NewRedisLimiter(rdb, cfg.BookingRateLimit, cfg.RateLimitWindow, "rl:booking"),
		login:   cache.NewRedisLimiter(rdb, cfg.LoginRateLimit, cfg.RateLimitWindow, "rl:login"),
	}, rdb, nil
}

func buildCaptcha(cfg *config.Config) (interfaces.ICaptchaVerifier, error) {
	if cfg.CaptchaDisabled {
		log.Warn().Msg("[app][captcha] human verification disabled")
		return nil, nil
	}
	if cfg.RecaptchaSecretKey == "" {
		// Bookings fail with a dependency error until a secret is configured.
		log.Warn().Msg("[app][captcha] RECAPTCHA_SECRET_KEY not set")
		return nil, nil
	}
	v, err := captcha.NewRecaptchaVerifier(cfg.RecaptchaSecretKey, cfg.RecaptchaVerifyURL, cfg.RecaptchaMinScore, cfg.RecaptchaTimeout)
	if err != nil {
		return nil, fmt.Errorf("captcha verifier: %w", err)
	}
	return v, nil
}

func buildPaymentGateway(cfg *config.Config) interfaces.IPaymentGateway {
	g, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("[app][payment] card charges disabled")
		return nil
	}
	return g
}
