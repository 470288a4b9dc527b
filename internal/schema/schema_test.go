package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func textField(name string) FieldConfig {
	return FieldConfig{Type: FieldText, Name: name}
}

func TestFieldType_UnmarshalRejectsUnknown(t *testing.T) {
	t.Parallel()

	var f FieldConfig
	err := json.Unmarshal([]byte(`{"type":"carousel","name":"x"}`), &f)
	if err == nil || !strings.Contains(err.Error(), "unknown field type") {
		t.Fatalf("expected unknown field type error, got %v", err)
	}

	if err := json.Unmarshal([]byte(`{"type":"dateRange","name":"joining_date"}`), &f); err != nil {
		t.Fatalf("valid type rejected: %v", err)
	}
	if f.Type != FieldDateRange {
		t.Fatalf("got %q", f.Type)
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	t.Parallel()

	sections := []Section{
		{Title: "Basic", Fields: []FieldConfig{textField("name"), textField("phone")}},
		{Title: "Extra", Fields: []FieldConfig{textField("phone")}},
	}
	err := Validate(sections)
	if err == nil || !strings.Contains(err.Error(), "duplicate field name") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestValidate_Paths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ok   bool
	}{
		{"name", true},
		{"address.line1", true},
		{"items.0.amount", true},
		{"", false},
		{"1name", false},
		{"a..b", false},
		{"a.b.", false},
	}
	for _, tc := range cases {
		if got := ValidPath(tc.name); got != tc.ok {
			t.Errorf("ValidPath(%q) = %v, want %v", tc.name, got, tc.ok)
		}
	}
}

func TestValidate_DropdownXOR(t *testing.T) {
	t.Parallel()

	both := FieldConfig{Type: FieldDropdown, Name: "zone_id", Dropdown: &DropdownConfig{
		API:     "/zones",
		Options: []Option{{Value: 1, Label: "North"}},
	}}
	if err := Validate([]Section{{Title: "x", Fields: []FieldConfig{both}}}); err == nil {
		t.Fatalf("expected error for api+options")
	}

	neither := FieldConfig{Type: FieldDropdown, Name: "zone_id", Dropdown: &DropdownConfig{}}
	if err := Validate([]Section{{Title: "x", Fields: []FieldConfig{neither}}}); err == nil {
		t.Fatalf("expected error for missing source")
	}

	missing := FieldConfig{Type: FieldDropdown, Name: "zone_id"}
	if err := Validate([]Section{{Title: "x", Fields: []FieldConfig{missing}}}); err == nil {
		t.Fatalf("expected error for nil dropdown config")
	}
}

func TestValidate_FieldArray(t *testing.T) {
	t.Parallel()

	f := FieldConfig{Type: FieldArray, Name: "items", Array: &ArrayConfig{
		ItemFields: []FieldConfig{textField("title"), {Type: FieldNumber, Name: "amount"}},
		CanAppend:  true,
	}}
	if err := Validate([]Section{{Title: "Items", Fields: []FieldConfig{f}}}); err != nil {
		t.Fatalf("valid field array rejected: %v", err)
	}

	nested := FieldConfig{Type: FieldArray, Name: "items", Array: &ArrayConfig{
		ItemFields: []FieldConfig{{Type: FieldArray, Name: "sub", Array: &ArrayConfig{ItemFields: []FieldConfig{textField("x")}}}},
	}}
	if err := Validate([]Section{{Title: "Items", Fields: []FieldConfig{nested}}}); err == nil {
		t.Fatalf("expected error for nested field array")
	}

	bounds := FieldConfig{Type: FieldArray, Name: "items", Array: &ArrayConfig{
		ItemFields: []FieldConfig{textField("title")},
		MinItems:   3, MaxItems: 1,
	}}
	if err := Validate([]Section{{Title: "Items", Fields: []FieldConfig{bounds}}}); err == nil {
		t.Fatalf("expected error for min > max")
	}
}

func TestSection_ColumnsFallback(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ grids, want int }{
		{0, 1}, {-2, 1}, {9, 1}, {1, 1}, {3, 3}, {8, 8},
	} {
		s := Section{Grids: tc.grids}
		if got := s.Columns(); got != tc.want {
			t.Errorf("Columns() with grids=%d = %d, want %d", tc.grids, got, tc.want)
		}
	}
}

func TestPermitted_FiltersAndOrders(t *testing.T) {
	t.Parallel()

	sections := []Section{{
		Title: "Basic",
		Fields: []FieldConfig{
			{Type: FieldText, Name: "b", Order: 2},
			{Type: FieldText, Name: "hidden", Permission: Bool(false)},
			{Type: FieldText, Name: "a", Order: 1},
		},
	}, {
		Title:  "Empty",
		Fields: []FieldConfig{{Type: FieldText, Name: "gone", Permission: Bool(false)}},
	}}

	got := Permitted(sections)
	if len(got) != 1 {
		t.Fatalf("expected empty section dropped, got %d sections", len(got))
	}
	names := []string{got[0].Fields[0].Name, got[0].Fields[1].Name}
	if names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected [a b], got %v", names)
	}
}
