package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// Client describes a subscriber connection.
func Client() Descriptor {
	return Descriptor{
		Name:          "clients",
		Title:         "Clients",
		Required:      []string{"id", "name"},
		DefaultFilter: "order=name",
		Columns: []table.Column[Row]{
			textCol("client_no", "Client No"),
			textCol("name", "Name"),
			textCol("phone", "Phone"),
			textCol("package_name", "Package"),
			textCol("zone_name", "Zone"),
			textCol("balance", "Balance"),
			textCol("connection_status", "Status"),
		},
		FormSchema: clientForm,
		Exportable: false,
	}
}

func clientForm(mode form.Mode) form.Definition {
	return form.Definition{
		Entity: "clients",
		Path:   "clients",
		Sections: []schema.Section{
			{
				Title: "Subscriber",
				Grids: 3,
				Fields: []schema.FieldConfig{
					{Type: schema.FieldText, Name: "name", Order: 1,
						Label: &schema.Label{Text: "Name", Required: true}},
					{Type: schema.FieldText, Name: "phone", Order: 2,
						Label: &schema.Label{Text: "Phone", Required: true}, Rules: "min=11,max=14"},
					{Type: schema.FieldEmail, Name: "email", Order: 3,
						Label: &schema.Label{Text: "Email"}},
					{Type: schema.FieldText, Name: "national_id", Order: 4,
						Label: &schema.Label{Text: "National ID"}},
					{Type: schema.FieldDate, Name: "connection_date", Order: 5,
						Label: &schema.Label{Text: "Connection Date"}},
				},
			},
			{
				Title: "Connection",
				Grids: 3,
				Fields: []schema.FieldConfig{
					{Type: schema.FieldDropdown, Name: "zone_id", Order: 1,
						Label:    &schema.Label{Text: "Zone", Required: true},
						Dropdown: &schema.DropdownConfig{API: "zones"}},
					{Type: schema.FieldDropdown, Name: "subzone_id", Order: 2,
						Label:    &schema.Label{Text: "Sub Zone"},
						Dropdown: &schema.DropdownConfig{API: "subzones"}},
					{Type: schema.FieldDropdown, Name: "package_id", Order: 3,
						Label:    &schema.Label{Text: "Package", Required: true},
						Dropdown: &schema.DropdownConfig{API: "packages"}},
					{Type: schema.FieldNumber, Name: "monthly_fee", Order: 4,
						Label: &schema.Label{Text: "Monthly Fee", Required: true}, Rules: "gte=0"},
					{Type: schema.FieldRadio, Name: "connection_status", Order: 5,
						Label: &schema.Label{Text: "Status"}, Default: "active",
						Dropdown: &schema.DropdownConfig{Options: []schema.Option{
							{Value: "active", Label: "Active"},
							{Value: "inactive", Label: "Inactive"},
							{Value: "blocked", Label: "Blocked"},
						}},
					},
					{Type: schema.FieldSwitch, Name: "auto_invoice", Order: 6,
						Label: &schema.Label{Text: "Auto Invoice"}, Default: true},
				},
			},
			{
				Title: "Address",
				Fields: []schema.FieldConfig{
					{Type: schema.FieldTextarea, Name: "address", Order: 1,
						Label: &schema.Label{Text: "Address"}},
				},
			},
		},
	}
}
