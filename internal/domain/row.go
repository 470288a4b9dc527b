// Package domain describes the back-office entities: their rows as
// returned by the list endpoints, their table columns and their form
// schemas. Schemas are pure functions of the form mode; nothing here
// holds state.
package domain

import (
	"fmt"

	"github.com/ispconsole/backoffice/internal/form"
	"github.com/ispconsole/backoffice/internal/table"
)

// Row is one record as returned by the remote API. Validation is
// passthrough: required fields are checked, unknown fields ride along
// untouched.
type Row map[string]any

// ID returns the row's identifier rendered as a string.
func (r Row) ID() string {
	if v, ok := r["id"]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// Str returns a field as a string, empty when absent.
func (r Row) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Validate checks the required fields; everything else passes through.
func (r Row) Validate(required []string) error {
	for _, key := range required {
		v, ok := r[key]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("row missing required field %q", key)
		}
	}
	return nil
}

// Descriptor ties one entity together: its API path, table columns,
// row requirements and form schema.
type Descriptor struct {
	// Name is the plural API path segment ("staffs") and the cache
	// key every mutation invalidates.
	Name  string
	Title string

	// Required lists the row fields the list endpoint must return.
	Required []string

	// DefaultFilter is appended to every filter query.
	DefaultFilter string

	Columns    []table.Column[Row]
	FormSchema func(mode form.Mode) form.Definition

	// Exportable entities render a PDF via the report generator.
	Exportable bool
}

// Rows converts the raw maps of a list page, dropping rows that fail
// passthrough validation rather than poisoning the table.
func (d Descriptor) Rows(raw []map[string]any) ([]Row, error) {
	out := make([]Row, 0, len(raw))
	for _, m := range raw {
		row := Row(m)
		if err := row.Validate(d.Required); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func textCol(key, title string) table.Column[Row] {
	return table.Column[Row]{
		Key: key, Title: title, Sortable: true, Hideable: true,
		Accessor: func(r Row) any { return r[key] },
	}
}
