package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// User describes a dashboard login account.
func User() Descriptor {
	return Descriptor{
		Name:     "users",
		Title:    "Users",
		Required: []string{"id", "username"},
		Columns: []table.Column[Row]{
			textCol("username", "Username"),
			textCol("name", "Name"),
			textCol("role", "Role"),
			textCol("status", "Status"),
		},
		FormSchema: userForm,
	}
}

// userForm is the one schema that genuinely depends on mode: the
// password pair exists only when creating, so it cannot be inferred
// from the row shape a read returns.
func userForm(mode form.Mode) form.Definition {
	fields := []schema.FieldConfig{
		{Type: schema.FieldText, Name: "username", Order: 1,
			Label: &schema.Label{Text: "Username", Required: true}, Rules: "min=3,max=32"},
		{Type: schema.FieldText, Name: "name", Order: 2,
			Label: &schema.Label{Text: "Full Name", Required: true}},
		{Type: schema.FieldEmail, Name: "email", Order: 3,
			Label: &schema.Label{Text: "Email"}},
		{Type: schema.FieldDropdown, Name: "role", Order: 4,
			Label: &schema.Label{Text: "Role", Required: true},
			Dropdown: &schema.DropdownConfig{Options: []schema.Option{
				{Value: "admin", Label: "Admin"},
				{Value: "manager", Label: "Manager"},
				{Value: "accountant", Label: "Accountant"},
				{Value: "operator", Label: "Operator"},
			}},
		},
		{Type: schema.FieldSwitch, Name: "status", Order: 5,
			Label: &schema.Label{Text: "Active"}, Default: true},
	}

	var refinements []form.Refinement
	if mode == form.ModeCreate {
		fields = append(fields,
			schema.FieldConfig{Type: schema.FieldPassword, Name: "password", Order: 6,
				Label: &schema.Label{Text: "Password", Required: true}, Rules: "min=8"},
			schema.FieldConfig{Type: schema.FieldPassword, Name: "confirm_password", Order: 7,
				Label: &schema.Label{Text: "Confirm Password", Required: true}},
		)
		refinements = append(refinements, form.Refinement{
			Fields:  []string{"confirm_password"},
			Message: "Passwords do not match",
			Ok: func(values map[string]any) bool {
				return values["password"] == values["confirm_password"]
			},
		})
	}

	return form.Definition{
		Entity:      "users",
		Path:        "users",
		Sections:    []schema.Section{{Title: "Account", Grids: 2, Fields: fields}},
		Refinements: refinements,
	}
}
