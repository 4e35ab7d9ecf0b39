package handlers

import (
	"net/http"
	"strings"

	"clinic_api/internal/adapter/http/dto/request"
	"clinic_api/internal/adapter/http/dto/response"
	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AppointmentHandler serves the public booking form and the admin appointment views.
type AppointmentHandler struct {
	usecase  usecase.IAppointmentUseCase
	finances usecase.IFinanceUseCase
}

func NewAppointmentHandler(uc usecase.IAppointmentUseCase, finances usecase.IFinanceUseCase) *AppointmentHandler {
	return &AppointmentHandler{usecase: uc, finances: finances}
}

// Book godoc
// @Summary      Book an appointment
// @Description  Public booking. Requires a human verification token unless disabled. New bookings are pending.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        payload  body      request.BookAppointmentRequest  true  "Booking"
// @Success      201      {object}  response.Envelope{data=response.AppointmentResponse}
// @Failure      400      {object}  pkg.AppError
// @Failure      409      {object}  pkg.AppError
// @Failure      429      {object}  pkg.AppError
// @Failure      503      {object}  pkg.AppError
// @Router       /appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	var payload request.BookAppointmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Info().Err(err).Msg("[appointment][handler] invalid payload")
		abortWithAppError(c, errInvalidPayload)
		return
	}

	created, err := h.usecase.Book(c.Request.Context(), usecase.BookAppointmentInput{
		PatientName:  payload.Name,
		Contact:      payload.Contact,
		Date:         payload.Date,
		Time:         payload.Time,
		Services:     payload.Services,
		Message:      payload.Message,
		CaptchaToken: payload.ResolveCaptchaToken(),
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(response.FromAppointment(created)))
}

// AvailableSlots godoc
// @Summary      Remaining seats per slot
// @Tags         appointments
// @Produce      json
// @Param        date  query     string  true  "Day (YYYY-MM-DD)"
// @Success      200   {object}  response.Envelope{data=response.AvailabilityResponse}
// @Failure      400   {object}  pkg.AppError
// @Router       /appointments/available-slots [get]
func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	av, err := h.usecase.Availability(c.Request.Context(), c.Query("date"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromAvailability(av)))
}

// List godoc
// @Summary      List appointments
// @Description  Sorted by date then time.
// @Tags         admin-appointments
// @Produce      json
// @Security     Bearer
// @Param        status  query     string  false  "pending | confirmed | cancelled"
// @Param        from    query     string  false  "First day (YYYY-MM-DD)"
// @Param        to      query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200     {object}  response.Envelope{data=[]response.AppointmentResponse}
// @Failure      400     {object}  pkg.AppError
// @Failure      401     {object}  pkg.AppError
// @Router       /admin/appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	filter := entities.AppointmentFilter{
		Status: entities.AppointmentStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	}
	var bad []string
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		d, err := entities.ParseDate(raw)
		if err != nil {
			bad = append(bad, "from")
		}
		filter.From = d
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		d, err := entities.ParseDate(raw)
		if err != nil {
			bad = append(bad, "to")
		}
		filter.To = d
	}
	if len(bad) > 0 {
		abortWithAppError(c, errInvalidQuery.WithFields(bad...))
		return
	}

	items, err := h.usecase.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromAppointments(items)))
}

// Get godoc
// @Summary      Get an appointment with its finance records
// @Tags         admin-appointments
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Envelope{data=response.AppointmentDetailResponse}
// @Failure      404  {object}  pkg.AppError
// @Router       /admin/appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	a, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var finances []entities.FinanceRecord
	if h.finances != nil {
		finances, err = h.finances.ListByAppointment(c.Request.Context(), a.ID)
		if err != nil {
			abortWithError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, response.OK(response.FromAppointmentDetail(a, finances)))
}

// UpdateStatus godoc
// @Summary      Set an appointment status
// @Description  Setting the current status again is a no-op.
// @Tags         admin-appointments
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path      string                                  true  "Appointment ID"
// @Param        payload  body      request.UpdateAppointmentStatusRequest  true  "New status"
// @Success      200      {object}  response.Envelope{data=response.AppointmentResponse}
// @Failure      400      {object}  pkg.AppError
// @Failure      404      {object}  pkg.AppError
// @Router       /admin/appointments/{id} [put]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var payload request.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithAppError(c, errInvalidPayload.WithFields("status"))
		return
	}

	updated, err := h.usecase.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromAppointment(updated)))
}

// Confirm godoc
// @Summary      Confirm an appointment
// @Tags         admin-appointments
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Envelope{data=response.AppointmentResponse}
// @Failure      404  {object}  pkg.AppError
// @Router       /admin/appointments/{id}/confirm [put]
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	updated, err := h.usecase.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromAppointment(updated)))
}

// Cancel godoc
// @Summary      Cancel an appointment
// @Description  Frees the seat it held.
// @Tags         admin-appointments
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Envelope{data=response.AppointmentResponse}
// @Failure      404  {object}  pkg.AppError
// @Router       /admin/appointments/{id}/cancel [put]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	updated, err := h.usecase.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromAppointment(updated)))
}

// Delete godoc
// @Summary      Delete an appointment
// @Description  Refused while finance records reference the appointment.
// @Tags         admin-appointments
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  pkg.AppError
// @Failure      409  {object}  pkg.AppError
// @Router       /admin/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Appointment deleted successfully"))
}
