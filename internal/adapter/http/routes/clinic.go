package routes

import (
	"clinic_api/internal/adapter/http/handlers"
	"clinic_api/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

const (
	PathPing         = "/ping"
	PathAppointments = "/appointments"
	PathFinances     = "/finances"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET(PathPing, handlers.Ping)
}

func addAppointmentRoutes(rg *gin.RouterGroup, deps Dependencies) {
	h := handlers.NewAppointmentHandler(deps.Appointments, deps.Finances)

	appointments := rg.Group(PathAppointments)
	{
		book := []gin.HandlerFunc{h.Book}
		if deps.BookingLimiter != nil {
			book = append([]gin.HandlerFunc{middleware.RateLimit(deps.BookingLimiter, "booking")}, book...)
		}
		appointments.POST("", book...)
		appointments.GET("/available-slots", h.AvailableSlots)
	}
}

func addAdminRoutes(rg *gin.RouterGroup, deps Dependencies, cookie handlers.CookieConfig) {
	appointmentHandler := handlers.NewAppointmentHandler(deps.Appointments, deps.Finances)
	financeHandler := handlers.NewFinanceHandler(deps.Finances)
	authHandler := handlers.NewAuthHandler(deps.Auth, cookie)

	admin := rg.Group(PathAdmin)

	login := []gin.HandlerFunc{authHandler.Login}
	if deps.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(deps.LoginLimiter, "login")}, login...)
	}
	admin.POST("/login", login...)
	admin.POST("/logout", authHandler.Logout)

	guarded := admin.Group("", middleware.AccessGuard(deps.Auth))
	guarded.GET("/me", authHandler.Me)

	appointments := guarded.Group(PathAppointments)
	{
		appointments.GET("", appointmentHandler.List)
		appointments.GET("/:id", appointmentHandler.Get)
		appointments.PUT("/:id", appointmentHandler.UpdateStatus)
		appointments.PUT("/:id/confirm", appointmentHandler.Confirm)
		appointments.PUT("/:id/cancel", appointmentHandler.Cancel)
		appointments.DELETE("/:id", appointmentHandler.Delete)
	}

	finances := guarded.Group(PathFinances)
	{
		finances.GET("", financeHandler.List)
		finances.POST("", financeHandler.RecordPayment)
		finances.GET("/summary", financeHandler.Summary)
		finances.GET("/export", financeHandler.Export)
		finances.GET("/:id", financeHandler.Get)
		finances.PUT("/:id", financeHandler.UpdateStatus)
	}
}
