package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// Staff describes the field workforce: collectors, line staff, office
// staff.
func Staff() Descriptor {
	return Descriptor{
		Name:     "staffs",
		Title:    "Staff",
		Required: []string{"id", "name"},
		Columns: []table.Column[Row]{
			textCol("name", "Name"),
			textCol("phone", "Phone"),
			textCol("designation", "Designation"),
			textCol("zone_name", "Zone"),
			textCol("status", "Status"),
		},
		FormSchema: staffForm,
		Exportable: false,
	}
}

func staffForm(mode form.Mode) form.Definition {
	return form.Definition{
		Entity: "staffs",
		Path:   "staffs",
		Sections: []schema.Section{
			{
				Title: "Basic Information",
				Grids: 2,
				Fields: []schema.FieldConfig{
					{Type: schema.FieldText, Name: "name", Order: 1,
						Label: &schema.Label{Text: "Name", Required: true}, Placeholder: "Full name"},
					{Type: schema.FieldText, Name: "phone", Order: 2,
						Label: &schema.Label{Text: "Phone", Required: true}, Rules: "min=11,max=14"},
					{Type: schema.FieldEmail, Name: "email", Order: 3,
						Label: &schema.Label{Text: "Email"}},
					{Type: schema.FieldDropdown, Name: "designation", Order: 4,
						Label: &schema.Label{Text: "Designation", Required: true},
						Dropdown: &schema.DropdownConfig{Options: []schema.Option{
							{Value: "collector", Label: "Bill Collector"},
							{Value: "line_staff", Label: "Line Staff"},
							{Value: "office_staff", Label: "Office Staff"},
							{Value: "manager", Label: "Manager"},
						}},
					},
					{Type: schema.FieldDropdown, Name: "zone_id", Order: 5,
						Label:    &schema.Label{Text: "Zone", Tooltip: "Assigned collection zone"},
						Dropdown: &schema.DropdownConfig{API: "zones"},
					},
					{Type: schema.FieldDate, Name: "joining_date", Order: 6,
						Label: &schema.Label{Text: "Joining Date"}},
				},
			},
			{
				Title: "Address & Status",
				Grids: 2,
				Fields: []schema.FieldConfig{
					{Type: schema.FieldTextarea, Name: "address", Order: 1,
						Label: &schema.Label{Text: "Address"}},
					{Type: schema.FieldSwitch, Name: "status", Order: 2,
						Label: &schema.Label{Text: "Active"}, Default: true},
				},
			},
		},
	}
}
