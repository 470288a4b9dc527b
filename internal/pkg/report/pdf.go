// Package report renders the exportable entities as PDFs: salary
// sheets for staff and invoices for clients.
package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Line is one amount row on a sheet. Negative amounts render as
// deductions.
type Line struct {
	Title  string
	Amount float64
}

// SalarySheet is the input for a salary PDF. HostedURL, when set, is
// rendered as a QR code linking the printed sheet back to the stored
// copy.
type SalarySheet struct {
	CompanyName string
	StaffName   string
	Designation string
	Month       string
	Lines       []Line
	Note        string
	HostedURL   string
}

// Invoice is the input for an invoice PDF.
type Invoice struct {
	CompanyName string
	InvoiceNo   string
	ClientName  string
	Month       string
	Lines       []Line
	Status      string
	HostedURL   string
}

// Generator generates PDF exports.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateSalarySheet renders one staff member's salary for a month.
func (g *Generator) GenerateSalarySheet(data SalarySheet) ([]byte, error) {
	m := maroto.New()

	m.AddRows(
		row.New(16).Add(
			col.New(12).Add(
				text.New(data.CompanyName, props.Text{
					Align: align.Center,
					Size:  18,
					Style: fontstyle.Bold,
				}),
			),
		),
		row.New(10).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Salary Sheet - %s", data.Month), props.Text{
					Align: align.Center,
					Size:  12,
				}),
			),
		),
		row.New(10).Add(
			col.New(6).Add(text.New("Staff:")),
			col.New(6).Add(text.New(data.StaffName, props.Text{Style: fontstyle.Bold})),
		),
		row.New(10).Add(
			col.New(6).Add(text.New("Designation:")),
			col.New(6).Add(text.New(data.Designation)),
		),
	)

	addLines(m, data.Lines)

	if data.Note != "" {
		m.AddRows(
			row.New(12).Add(
				col.New(12).Add(text.New("Note: "+data.Note, props.Text{Top: 4, Size: 9})),
			),
		)
	}
	addHostedLink(m, data.HostedURL)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// GenerateInvoice renders one client invoice.
func (g *Generator) GenerateInvoice(data Invoice) ([]byte, error) {
	m := maroto.New()

	m.AddRows(
		row.New(16).Add(
			col.New(12).Add(
				text.New(data.CompanyName, props.Text{
					Align: align.Center,
					Size:  18,
					Style: fontstyle.Bold,
				}),
			),
		),
		row.New(10).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Invoice %s - %s", data.InvoiceNo, data.Month), props.Text{
					Align: align.Center,
					Size:  12,
				}),
			),
		),
		row.New(10).Add(
			col.New(6).Add(text.New("Billed to:")),
			col.New(6).Add(text.New(data.ClientName, props.Text{Style: fontstyle.Bold})),
		),
		row.New(10).Add(
			col.New(6).Add(text.New("Status:")),
			col.New(6).Add(text.New(data.Status)),
		),
	)

	addLines(m, data.Lines)
	addHostedLink(m, data.HostedURL)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// addHostedLink renders a QR code pointing at the stored copy of the
// document, so a printed sheet still leads back to the original.
func addHostedLink(m core.Maroto, url string) {
	if url == "" {
		return
	}
	m.AddRows(
		row.New(40).Add(
			col.New(4).Add(
				code.NewQr(url, props.Rect{Percent: 100}),
			),
			col.New(8).Add(
				text.New("Scan to open the hosted copy.", props.Text{Top: 15}),
			),
		),
	)
}

// addLines renders the amount table and the computed total. Negative
// amounts are deductions and show in parentheses.
func addLines(m core.Maroto, lines []Line) {
	m.AddRows(
		row.New(12).Add(
			col.New(8).Add(text.New("Description", props.Text{Style: fontstyle.Bold, Top: 4})),
			col.New(4).Add(text.New("Amount", props.Text{Style: fontstyle.Bold, Top: 4, Align: align.Right})),
		),
		row.New(2).Add(col.New(12).Add(line.New())),
	)

	var total float64
	for _, l := range lines {
		total += l.Amount
		amount := fmt.Sprintf("%.2f", l.Amount)
		if l.Amount < 0 {
			amount = fmt.Sprintf("(%.2f)", -l.Amount)
		}
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.Title)),
				col.New(4).Add(text.New(amount, props.Text{Align: align.Right})),
			),
		)
	}

	m.AddRows(
		row.New(2).Add(col.New(12).Add(line.New())),
		row.New(10).Add(
			col.New(8).Add(text.New("Total", props.Text{Style: fontstyle.Bold})),
			col.New(4).Add(text.New(fmt.Sprintf("%.2f", total), props.Text{
				Style: fontstyle.Bold,
				Align: align.Right,
			})),
		),
	)
}
