package reports

import (
	"fmt"
	"io"

	"clinic_api/internal/domain/entities"

	"github.com/xuri/excelize/v2"
)

const (
	LedgerSheet  = "Ledger"
	SummarySheet = "Summary"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ledgerHeaders = []string{
	"ID", "Appointment", "Patient", "Amount", "Method", "Status", "Payment date", "Notes", "Provider payment", "Provider status",
}

// WriteFinanceWorkbook renders a ledger as an xlsx workbook with a record sheet and a summary sheet.
// Amounts are written as numbers rounded to cents for display; the summary uses the exact decimal totals.
func WriteFinanceWorkbook(w io.Writer, ledger entities.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LedgerSheet); err != nil {
		return err
	}
	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(LedgerSheet, cell, h); err != nil {
			return err
		}
	}
	for i, r := range ledger.Records {
		row := i + 2
		values := []any{
			r.ID,
			r.AppointmentID,
			r.PatientName,
			r.Amount.Round(2).InexactFloat64(),
			string(r.PaymentMethod),
			string(r.Status),
			r.PaymentDate.UTC().Format("2006-01-02 15:04"),
			r.Notes,
			r.ProviderPaymentID,
			r.ProviderStatus,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(LedgerSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	s := ledger.Summary
	rows := [][]any{
		{"Records", s.Count},
		{"Total", s.Total.StringFixed(2)},
	}
	for _, st := range entities.FinanceStatuses {
		rows = append(rows, []any{"Status: " + string(st), s.ByStatus[st].StringFixed(2)})
	}
	for _, m := range entities.PaymentMethods {
		rows = append(rows, []any{"Method: " + string(m), s.ByMethod[m].StringFixed(2)})
	}
	for i, row := range rows {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
