// Package schema defines the declarative field model the form and table
// engines consume. A schema is data: it is enough to render a field,
// validate it, and bind it to a named slot in form state. No field here
// is tied to a business entity; the same model describes clients,
// staff, salaries and the rest.
package schema

import (
	"encoding/json"
	"fmt"
)

// FieldType is the closed set of input kinds. Every switch over it must
// be exhaustive; an unknown value is a configuration error, not a
// fallback case.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldEmail     FieldType = "email"
	FieldPassword  FieldType = "password"
	FieldNumber    FieldType = "number"
	FieldTextarea  FieldType = "textarea"
	FieldDropdown  FieldType = "dropdown"
	FieldRadio     FieldType = "radio"
	FieldSwitch    FieldType = "switch"
	FieldCheckbox  FieldType = "checkbox"
	FieldDate      FieldType = "date"
	FieldDateRange FieldType = "dateRange"
	FieldArray     FieldType = "fieldArray"
)

// Valid reports whether t is a member of the closed set.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldPassword, FieldNumber, FieldTextarea,
		FieldDropdown, FieldRadio, FieldSwitch, FieldCheckbox,
		FieldDate, FieldDateRange, FieldArray:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown field types at decode time so a bad
// schema fails loudly instead of rendering nothing.
func (t *FieldType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ft := FieldType(s)
	if !ft.Valid() {
		return fmt.Errorf("unknown field type %q", s)
	}
	*t = ft
	return nil
}

// Label describes the visible caption of a field.
type Label struct {
	Text     string `json:"text"`
	Required bool   `json:"required"`
	Tooltip  string `json:"tooltip,omitempty"`
}

// Option is one selectable dropdown/radio entry.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// ValueMapping tells a remote dropdown how to project a fetched object
// into an option: which key carries the id and which the display text.
type ValueMapping struct {
	IDKey    string `json:"idKey"`
	LabelKey string `json:"labelKey"`
}

// DropdownConfig configures dropdown and radio fields. Exactly one of
// API (remote options source) or Options (static list) must be set.
type DropdownConfig struct {
	API     string       `json:"api,omitempty"`
	Options []Option     `json:"options,omitempty"`
	IsMulti bool         `json:"isMulti,omitempty"`
	Mapping ValueMapping `json:"valueMapping,omitzero"`
}

// Validate enforces the API-xor-Options contract.
func (d *DropdownConfig) Validate() error {
	if d.API != "" && len(d.Options) > 0 {
		return fmt.Errorf("both api and static options set")
	}
	if d.API == "" && len(d.Options) == 0 {
		return fmt.Errorf("neither api nor static options set")
	}
	return nil
}

// ArrayConfig configures a repeatable sub-form (e.g. salary line
// items). ItemFields describe one row; DefaultItem is the template
// appended for a new row.
type ArrayConfig struct {
	ItemFields  []FieldConfig  `json:"itemFields"`
	DefaultItem map[string]any `json:"defaultItem,omitempty"`
	MinItems    int            `json:"minItems,omitempty"`
	MaxItems    int            `json:"maxItems,omitempty"`
	CanAppend   bool           `json:"canAppend"`
	CanRemove   bool           `json:"canRemove"`
	CanReorder  bool           `json:"canReorder"`
}

// FieldConfig is the discriminated union describing one input.
// Dropdown is consulted only for dropdown/radio fields, Array only for
// fieldArray fields.
type FieldConfig struct {
	Type        FieldType       `json:"type"`
	Name        string          `json:"name"`
	Label       *Label          `json:"label,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Permission  *bool           `json:"permission,omitempty"`
	ClassName   string          `json:"className,omitempty"`
	Order       int             `json:"order,omitempty"`
	Default     any             `json:"defaultValue,omitempty"`
	Rules       string          `json:"rules,omitempty"`
	WatchFilter bool            `json:"watchForFilter,omitempty"`
	Dropdown    *DropdownConfig `json:"dropdown,omitempty"`
	Array       *ArrayConfig    `json:"fieldArray,omitempty"`
}

// Permitted reports whether the field may render. Only an explicit
// false hides a field.
func (f *FieldConfig) Permitted() bool {
	return f.Permission == nil || *f.Permission
}

// Bool is a convenience for building Permission values inline.
func Bool(v bool) *bool { return &v }
