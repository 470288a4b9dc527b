package domain

import (
	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/schema"
	"github.com/ispconsole/backoffice/internal/table"
)

// Zone describes a coverage area.
func Zone() Descriptor {
	return Descriptor{
		Name:     "zones",
		Title:    "Zones",
		Required: []string{"id", "name"},
		Columns: []table.Column[Row]{
			textCol("name", "Name"),
			textCol("code", "Code"),
			textCol("client_count", "Clients"),
		},
		FormSchema: zoneForm,
	}
}

func zoneForm(form.Mode) form.Definition {
	return form.Definition{
		Entity: "zones",
		Path:   "zones",
		Sections: []schema.Section{{
			Title: "Zone",
			Grids: 2,
			Fields: []schema.FieldConfig{
				{Type: schema.FieldText, Name: "name", Order: 1,
					Label: &schema.Label{Text: "Name", Required: true}},
				{Type: schema.FieldText, Name: "code", Order: 2,
					Label: &schema.Label{Text: "Code"}, Rules: "max=8"},
				{Type: schema.FieldTextarea, Name: "description", Order: 3,
					Label: &schema.Label{Text: "Description"}},
			},
		}},
	}
}

// SubZone describes a subdivision of a zone.
func SubZone() Descriptor {
	return Descriptor{
		Name:     "subzones",
		Title:    "Sub Zones",
		Required: []string{"id", "name"},
		Columns: []table.Column[Row]{
			textCol("name", "Name"),
			textCol("zone_name", "Zone"),
			textCol("client_count", "Clients"),
		},
		FormSchema: subZoneForm,
	}
}

func subZoneForm(form.Mode) form.Definition {
	return form.Definition{
		Entity: "subzones",
		Path:   "subzones",
		Sections: []schema.Section{{
			Title: "Sub Zone",
			Grids: 2,
			Fields: []schema.FieldConfig{
				{Type: schema.FieldText, Name: "name", Order: 1,
					Label: &schema.Label{Text: "Name", Required: true}},
				{Type: schema.FieldDropdown, Name: "zone_id", Order: 2,
					Label:    &schema.Label{Text: "Zone", Required: true},
					Dropdown: &schema.DropdownConfig{API: "zones"}},
			},
		}},
	}
}
