package schema

import (
	"fmt"
	"regexp"
	"sort"
)

// Section is one accordion group of fields, laid out in Grids columns.
type Section struct {
	Title  string        `json:"title"`
	Grids  int           `json:"grids,omitempty"`
	Fields []FieldConfig `json:"fields"`
}

// Columns returns the effective grid width. Anything outside 1..8
// falls back to a single column.
func (s *Section) Columns() int {
	if s.Grids < 1 || s.Grids > 8 {
		return 1
	}
	return s.Grids
}

// OrderedFields returns the section's fields sorted by Order, stable
// for equal values.
func (s *Section) OrderedFields() []FieldConfig {
	out := make([]FieldConfig, len(s.Fields))
	copy(out, s.Fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

var pathRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.([A-Za-z_][A-Za-z0-9_]*|[0-9]+))*$`)

// ValidPath reports whether name is a usable dot-path into form state.
// Numeric segments address field-array indexes.
func ValidPath(name string) bool {
	return pathRe.MatchString(name)
}

// Validate checks a whole schema: every field type must carry the
// config its kind requires, every name must be a valid path, and names
// must be unique across all sections.
func Validate(sections []Section) error {
	seen := map[string]bool{}
	for si := range sections {
		for fi := range sections[si].Fields {
			f := &sections[si].Fields[fi]
			if err := validateField(f); err != nil {
				return fmt.Errorf("section %q: %w", sections[si].Title, err)
			}
			if seen[f.Name] {
				return fmt.Errorf("duplicate field name %q", f.Name)
			}
			seen[f.Name] = true
		}
	}
	return nil
}

func validateField(f *FieldConfig) error {
	if !f.Type.Valid() {
		return fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
	}
	if !ValidPath(f.Name) {
		return fmt.Errorf("field %q: not a valid form-state path", f.Name)
	}

	switch f.Type {
	case FieldDropdown, FieldRadio:
		if f.Dropdown == nil {
			return fmt.Errorf("field %q: %s requires a dropdown config", f.Name, f.Type)
		}
		if err := f.Dropdown.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	case FieldArray:
		if f.Array == nil || len(f.Array.ItemFields) == 0 {
			return fmt.Errorf("field %q: fieldArray requires item fields", f.Name)
		}
		if f.Array.MaxItems > 0 && f.Array.MinItems > f.Array.MaxItems {
			return fmt.Errorf("field %q: minItems exceeds maxItems", f.Name)
		}
		itemSeen := map[string]bool{}
		for i := range f.Array.ItemFields {
			item := &f.Array.ItemFields[i]
			if item.Type == FieldArray {
				return fmt.Errorf("field %q: nested field arrays are not supported", f.Name)
			}
			if err := validateField(item); err != nil {
				return err
			}
			if itemSeen[item.Name] {
				return fmt.Errorf("field %q: duplicate item field %q", f.Name, item.Name)
			}
			itemSeen[item.Name] = true
		}
	case FieldText, FieldEmail, FieldPassword, FieldNumber, FieldTextarea,
		FieldSwitch, FieldCheckbox, FieldDate, FieldDateRange:
		// No extra config required.
	}
	return nil
}

// Permitted filters sections down to the fields allowed to render,
// keeping section order and dropping sections left empty.
func Permitted(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		kept := make([]FieldConfig, 0, len(s.Fields))
		for _, f := range s.OrderedFields() {
			if f.Permitted() {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, Section{Title: s.Title, Grids: s.Grids, Fields: kept})
	}
	return out
}

// Fields flattens all sections into one slice, in section order.
func Fields(sections []Section) []FieldConfig {
	var out []FieldConfig
	for i := range sections {
		out = append(out, sections[i].Fields...)
	}
	return out
}
