package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "clinic_api/docs"
	"clinic_api/internal/adapter/http/handlers"
	"clinic_api/internal/adapter/http/middleware"
	"clinic_api/internal/infrastructure/cache"
	"clinic_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	PathAPI   = "/api"
	PathAdmin = "/admin"
)

// Dependencies are the use cases and limiters the HTTP adapter is wired to.
type Dependencies struct {
	Appointments   usecase.IAppointmentUseCase
	Finances       usecase.IFinanceUseCase
	Auth           usecase.IAuthUseCase
	BookingLimiter cache.Limiter
	LoginLimiter   cache.Limiter
}

type Options struct {
	Production   bool
	CORSOrigins  []string
	CookieSecure bool
}

// NewRouter builds the gin engine with middlewares, Swagger and every API route.
func NewRouter(deps Dependencies, opts Options) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(log.Logger),
		middleware.Recovery(log.Logger),
		middleware.SecurityHeaders(),
		middleware.CORS(middleware.CORSPolicy{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(PathAPI)
	addPingRoutes(api)
	addAppointmentRoutes(api, deps)
	addAdminRoutes(api, deps, handlers.CookieConfig{Secure: opts.CookieSecure})

	return router
}

// Run serves the router until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, router http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "clinic-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("[http][server] listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("[http][server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("[http][server] graceful shutdown failed")
		return err
	}
	return <-errCh
}
