package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// Invoice describes a billing document issued to a client.
func Invoice() Descriptor {
	return Descriptor{
		Name:          "invoices",
		Title:         "Invoices",
		Required:      []string{"id", "client_name", "total"},
		DefaultFilter: "order=-issued_at",
		Columns: []table.Column[Row]{
			textCol("invoice_no", "Invoice No"),
			textCol("client_name", "Client"),
			textCol("month", "Month"),
			textCol("total", "Total"),
			textCol("status", "Status"),
			textCol("issued_at", "Issued"),
		},
		FormSchema: invoiceForm,
		Exportable: true,
	}
}

func invoiceForm(form.Mode) form.Definition {
	return form.Definition{
		Entity: "invoices",
		Path:   "invoices",
		Sections: []schema.Section{
			{
				Title: "Invoice",
				Grids: 3,
				Fields: []schema.FieldConfig{
					{Type: schema.FieldDropdown, Name: "client_id", Order: 1,
						Label:    &schema.Label{Text: "Client", Required: true},
						Dropdown: &schema.DropdownConfig{API: "clients"}},
					{Type: schema.FieldDate, Name: "month", Order: 2,
						Label: &schema.Label{Text: "Billing Month", Required: true}},
					{Type: schema.FieldDropdown, Name: "status", Order: 3,
						Label: &schema.Label{Text: "Status"}, Default: "unpaid",
						Dropdown: &schema.DropdownConfig{Options: []schema.Option{
							{Value: "unpaid", Label: "Unpaid"},
							{Value: "paid", Label: "Paid"},
							{Value: "partial", Label: "Partially Paid"},
						}},
					},
				},
			},
			{
				Title: "Lines",
				Fields: []schema.FieldConfig{
					{Type: schema.FieldArray, Name: "lines", Order: 1,
						Label: &schema.Label{Text: "Lines", Required: true},
						Array: &schema.ArrayConfig{
							ItemFields: []schema.FieldConfig{
								{Type: schema.FieldText, Name: "description",
									Label: &schema.Label{Text: "Description", Required: true}},
								{Type: schema.FieldNumber, Name: "amount",
									Label: &schema.Label{Text: "Amount", Required: true}, Rules: "gte=0"},
							},
							MinItems:  1,
							MaxItems:  30,
							CanAppend: true,
							CanRemove: true,
						},
					},
				},
			},
		},
	}
}
