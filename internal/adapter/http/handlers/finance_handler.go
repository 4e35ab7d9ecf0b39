package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clinic_api/internal/adapter/http/dto/request"
	"clinic_api/internal/adapter/http/dto/response"
	"clinic_api/internal/domain/entities"
	"clinic_api/internal/infrastructure/reports"
	"clinic_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// FinanceHandler serves the admin ledger.
type FinanceHandler struct {
	usecase usecase.IFinanceUseCase
	now     func() time.Time
}

func NewFinanceHandler(uc usecase.IFinanceUseCase) *FinanceHandler {
	return &FinanceHandler{usecase: uc, now: time.Now}
}

// RecordPayment godoc
// @Summary      Record a payment for an appointment
// @Description  Card payments with mpPayload are charged through Mercado Pago. New records are pending.
// @Tags         admin-finances
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        payload  body      request.RecordPaymentRequest  true  "Ledger entry"
// @Success      201      {object}  response.Envelope{data=response.FinanceRecordResponse}
// @Failure      400      {object}  pkg.AppError
// @Failure      404      {object}  pkg.AppError
// @Router       /admin/finances [post]
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	var payload request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithAppError(c, errInvalidPayload)
		return
	}

	var bad []string
	amount, err := payload.ResolveAmount()
	if err != nil {
		bad = append(bad, "amount")
	}
	paymentDate, err := payload.ResolvePaymentDate()
	if err != nil {
		bad = append(bad, "paymentDate")
	}
	if len(bad) > 0 {
		abortWithError(c, &usecase.ValidationError{Fields: bad})
		return
	}

	created, err := h.usecase.RecordPayment(c.Request.Context(), usecase.RecordPaymentInput{
		AppointmentID: payload.AppointmentID,
		Amount:        amount,
		Method:        payload.PaymentMethod,
		Notes:         payload.Notes,
		PaymentDate:   paymentDate,
		CardPayload:   payload.ResolveCardPayload(),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OK(response.FromFinanceRecord(created)))
}

// List godoc
// @Summary      List finance records with their summary
// @Description  Newest payment first.
// @Tags         admin-finances
// @Produce      json
// @Security     Bearer
// @Param        status  query     string  false  "pending | completed | refunded"
// @Param        method  query     string  false  "cash | card | bank_transfer"
// @Param        from    query     string  false  "Start (YYYY-MM-DD or RFC 3339)"
// @Param        to      query     string  false  "End (YYYY-MM-DD includes the whole day)"
// @Success      200     {object}  response.Envelope{data=response.LedgerResponse}
// @Failure      400     {object}  pkg.AppError
// @Router       /admin/finances [get]
func (h *FinanceHandler) List(c *gin.Context) {
	filter, err := ledgerFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ledger, err := h.usecase.Ledger(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromLedger(ledger)))
}

// Summary godoc
// @Summary      Aggregate totals
// @Description  Totals by status and by method over an optional payment date range.
// @Tags         admin-finances
// @Produce      json
// @Security     Bearer
// @Param        startDate  query     string  false  "Start (YYYY-MM-DD or RFC 3339)"
// @Param        endDate    query     string  false  "End (YYYY-MM-DD includes the whole day)"
// @Success      200        {object}  response.Envelope{data=response.FinanceSummaryResponse}
// @Failure      400        {object}  pkg.AppError
// @Router       /admin/finances/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	summary, err := h.usecase.Summarize(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromFinanceSummary(summary)))
}

// Export godoc
// @Summary      Download the ledger as xlsx
// @Tags         admin-finances
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     Bearer
// @Param        status  query  string  false  "pending | completed | refunded"
// @Param        method  query  string  false  "cash | card | bank_transfer"
// @Param        from    query  string  false  "Start (YYYY-MM-DD or RFC 3339)"
// @Param        to      query  string  false  "End (YYYY-MM-DD includes the whole day)"
// @Success      200     {file}  file
// @Failure      400     {object}  pkg.AppError
// @Router       /admin/finances/export [get]
func (h *FinanceHandler) Export(c *gin.Context) {
	filter, err := ledgerFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ledger, err := h.usecase.Ledger(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteFinanceWorkbook(&buf, ledger); err != nil {
		log.Error().Err(err).Msg("[finance][handler] workbook render failed")
		abortWithError(c, err)
		return
	}
	filename := fmt.Sprintf("finances-%s.xlsx", h.now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, reports.XLSXContentType, buf.Bytes())
}

// Get godoc
// @Summary      Get a finance record
// @Tags         admin-finances
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Finance record ID"
// @Success      200  {object}  response.Envelope{data=response.FinanceRecordResponse}
// @Failure      404  {object}  pkg.AppError
// @Router       /admin/finances/{id} [get]
func (h *FinanceHandler) Get(c *gin.Context) {
	rec, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromFinanceRecord(rec)))
}

// UpdateStatus godoc
// @Summary      Set a finance record status
// @Tags         admin-finances
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path      string                              true  "Finance record ID"
// @Param        payload  body      request.UpdateFinanceStatusRequest  true  "New status and optional notes"
// @Success      200      {object}  response.Envelope{data=response.FinanceRecordResponse}
// @Failure      400      {object}  pkg.AppError
// @Failure      404      {object}  pkg.AppError
// @Router       /admin/finances/{id} [put]
func (h *FinanceHandler) UpdateStatus(c *gin.Context) {
	var payload request.UpdateFinanceStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithAppError(c, errInvalidPayload.WithFields("status"))
		return
	}

	updated, err := h.usecase.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status, payload.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromFinanceRecord(updated)))
}

func ledgerFilter(c *gin.Context) (entities.FinanceFilter, error) {
	var bad []string
	filter, err := usecase.FinanceRange(c.Query("from"), c.Query("to"))
	if err != nil {
		var verr *usecase.ValidationError
		if !errors.As(err, &verr) {
			return entities.FinanceFilter{}, err
		}
		for _, f := range verr.Fields {
			bad = append(bad, strings.NewReplacer("startDate", "from", "endDate", "to").Replace(f))
		}
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := entities.ParseFinanceStatus(raw)
		if !ok {
			bad = append(bad, "status")
		}
		filter.Status = st
	}
	if raw := c.Query("method"); raw != "" {
		m, ok := entities.ParsePaymentMethod(raw)
		if !ok {
			bad = append(bad, "method")
		}
		filter.Method = m
	}
	if len(bad) > 0 {
		return entities.FinanceFilter{}, &usecase.ValidationError{Fields: bad}
	}
	return filter, nil
}
