package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// Vendor describes an upstream supplier (bandwidth, hardware).
func Vendor() Descriptor {
	return Descriptor{
		Name:     "vendors",
		Title:    "Vendors",
		Required: []string{"id", "name"},
		Columns: []table.Column[Row]{
			textCol("name", "Name"),
			textCol("contact_person", "Contact"),
			textCol("phone", "Phone"),
			textCol("due", "Due"),
		},
		FormSchema: vendorForm,
	}
}

func vendorForm(form.Mode) form.Definition {
	return form.Definition{
		Entity: "vendors",
		Path:   "vendors",
		Sections: []schema.Section{{
			Title: "Vendor",
			Grids: 2,
			Fields: []schema.FieldConfig{
				{Type: schema.FieldText, Name: "name", Order: 1,
					Label: &schema.Label{Text: "Name", Required: true}},
				{Type: schema.FieldText, Name: "contact_person", Order: 2,
					Label: &schema.Label{Text: "Contact Person"}},
				{Type: schema.FieldText, Name: "phone", Order: 3,
					Label: &schema.Label{Text: "Phone", Required: true}, Rules: "min=11,max=14"},
				{Type: schema.FieldEmail, Name: "email", Order: 4,
					Label: &schema.Label{Text: "Email"}},
				{Type: schema.FieldTextarea, Name: "address", Order: 5,
					Label: &schema.Label{Text: "Address"}},
				{Type: schema.FieldSwitch, Name: "status", Order: 6,
					Label: &schema.Label{Text: "Active"}, Default: true},
			},
		}},
	}
}
