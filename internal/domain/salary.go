package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// Salary describes one monthly salary sheet with its line items
// (base, bonus, deduction rows).
func Salary() Descriptor {
	return Descriptor{
		Name:     "salaries",
		Title:    "Salaries",
		Required: []string{"id", "staff_name", "month"},
		Columns: []table.Column[Row]{
			textCol("staff_name", "Staff"),
			textCol("month", "Month"),
			textCol("total", "Total"),
			textCol("status", "Status"),
		},
		FormSchema: salaryForm,
		Exportable: true,
	}
}

func salaryForm(mode form.Mode) form.Definition {
	return form.Definition{
		Entity: "salaries",
		Path:   "salaries",
		Sections: []schema.Section{
			{
				Title: "Sheet",
				Grids: 3,
				Fields: []schema.FieldConfig{
					{Type: schema.FieldDropdown, Name: "staff_id", Order: 1,
						Label:    &schema.Label{Text: "Staff", Required: true},
						Dropdown: &schema.DropdownConfig{API: "staffs"}},
					{Type: schema.FieldDate, Name: "month", Order: 2,
						Label: &schema.Label{Text: "Month", Required: true}},
					{Type: schema.FieldDropdown, Name: "status", Order: 3,
						Label: &schema.Label{Text: "Status"}, Default: "pending",
						Dropdown: &schema.DropdownConfig{Options: []schema.Option{
							{Value: "pending", Label: "Pending"},
							{Value: "paid", Label: "Paid"},
						}},
					},
				},
			},
			{
				Title: "Line Items",
				Fields: []schema.FieldConfig{
					{Type: schema.FieldArray, Name: "items", Order: 1,
						Label: &schema.Label{Text: "Items", Required: true},
						Array: &schema.ArrayConfig{
							ItemFields: []schema.FieldConfig{
								{Type: schema.FieldText, Name: "title",
									Label: &schema.Label{Text: "Title", Required: true}},
								{Type: schema.FieldDropdown, Name: "kind",
									Label: &schema.Label{Text: "Type"},
									Dropdown: &schema.DropdownConfig{Options: []schema.Option{
										{Value: "earning", Label: "Earning"},
										{Value: "deduction", Label: "Deduction"},
									}},
								},
								{Type: schema.FieldNumber, Name: "amount",
									Label: &schema.Label{Text: "Amount", Required: true}, Rules: "gte=0"},
							},
							DefaultItem: map[string]any{"kind": "earning"},
							MinItems:    1,
							MaxItems:    20,
							CanAppend:   true,
							CanRemove:   true,
							CanReorder:  true,
						},
					},
					{Type: schema.FieldTextarea, Name: "note", Order: 2,
						Label: &schema.Label{Text: "Note"}},
				},
			},
		},
	}
}
