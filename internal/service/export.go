package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/ispconsole/backoffice/internal/domain"
	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/pkg/report"
)

// Export renders an exportable record as a PDF, uploads it and returns
// a short-lived download link.
func (s *Entity) Export(ctx context.Context, entity, id string) (string, error) {
	d, err := s.Descriptor(entity)
	if err != nil {
		return "", err
	}
	if !d.Exportable {
		return "", apperrors.New(http.StatusBadRequest, "Validation Error",
			fmt.Sprintf("%s records cannot be exported", entity))
	}
	if s.store == nil {
		return "", apperrors.New(http.StatusNotImplemented, "Export Unavailable",
			"no object storage configured")
	}

	row, err := s.Get(ctx, entity, id)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%s/%s.pdf", entity, id)
	hosted := s.store.ObjectURL(key)

	var pdf []byte
	switch entity {
	case "salaries":
		sheet := salarySheetFrom(row)
		sheet.HostedURL = hosted
		pdf, err = s.reports.GenerateSalarySheet(sheet)
	case "invoices":
		inv := invoiceFrom(row)
		inv.HostedURL = hosted
		pdf, err = s.reports.GenerateInvoice(inv)
	default:
		return "", apperrors.New(http.StatusBadRequest, "Validation Error",
			fmt.Sprintf("no export template for %s", entity))
	}
	if err != nil {
		return "", fmt.Errorf("render %s %s: %w", entity, id, err)
	}
	if _, err := s.store.Upload(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return "", err
	}
	url, err := s.store.PresignDownload(ctx, key, presignExpiry)
	if err != nil {
		return "", err
	}

	logger.From(ctx).Info("export generated", "entity", entity, "id", id, "key", key)
	return url, nil
}

func salarySheetFrom(row domain.Row) report.SalarySheet {
	return report.SalarySheet{
		CompanyName: CompanyName,
		StaffName:   row.Str("staff_name"),
		Designation: row.Str("designation"),
		Month:       row.Str("month"),
		Lines:       linesFrom(row["items"], "title", "kind"),
		Note:        row.Str("note"),
	}
}

func invoiceFrom(row domain.Row) report.Invoice {
	return report.Invoice{
		CompanyName: CompanyName,
		InvoiceNo:   row.Str("invoice_no"),
		ClientName:  row.Str("client_name"),
		Month:       row.Str("month"),
		Status:      row.Str("status"),
		Lines:       linesFrom(row["lines"], "description", ""),
	}
}

// linesFrom converts the raw line-item array. When kindKey is set,
// rows marked "deduction" flip negative so the sheet totals correctly.
func linesFrom(v any, titleKey, kindKey string) []report.Line {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]report.Line, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		amount := toFloat(m["amount"])
		if kindKey != "" {
			if kind, _ := m[kindKey].(string); kind == "deduction" && amount > 0 {
				amount = -amount
			}
		}
		title, _ := m[titleKey].(string)
		out = append(out, report.Line{Title: title, Amount: amount})
	}
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
