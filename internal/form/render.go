package form

import (
	"context"
	"fmt"

	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/schema"
)

// Control is one bound input as handed to the shell: enough to draw
// the field, show its value and inline error, and address writes back
// to the form state under Name.
type Control struct {
	Kind        schema.FieldType `json:"kind"`
	Name        string           `json:"name"`
	Label       *schema.Label    `json:"label,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	ClassName   string           `json:"className,omitempty"`
	Value       any              `json:"value,omitempty"`
	Error       string           `json:"error,omitempty"`
	Options     []schema.Option  `json:"options,omitempty"`
	IsMulti     bool             `json:"isMulti,omitempty"`
	Loading     bool             `json:"loading,omitempty"`

	// Field-array projection.
	Rows       []ArrayRow `json:"rows,omitempty"`
	CanAppend  bool       `json:"canAppend,omitempty"`
	CanRemove  bool       `json:"canRemove,omitempty"`
	CanReorder bool       `json:"canReorder,omitempty"`
}

// ArrayRow is one rendered row of a repeatable sub-form, addressed by
// its stable synthetic id.
type ArrayRow struct {
	ID       string    `json:"id"`
	Controls []Control `json:"controls"`
}

// SectionView is one accordion group ready to draw.
type SectionView struct {
	Title    string    `json:"title"`
	Columns  int       `json:"columns"`
	Open     bool      `json:"open"`
	Controls []Control `json:"controls"`
}

// Render compiles the schema plus current state into accordion
// sections. The first section is open; invalid grid widths fall back
// to one column. Remote dropdown options are fetched once per field
// and cached on the engine; a failed fetch leaves the list empty and
// is not fatal to the form.
func (e *Engine) Render(ctx context.Context) []SectionView {
	sections := schema.Permitted(e.def.Sections)

	e.mu.Lock()
	loading := e.loading
	values := deepCopy(e.values).(map[string]any)
	errs := make(map[string]string, len(e.errs))
	for k, v := range e.errs {
		errs[k] = v
	}
	e.mu.Unlock()

	out := make([]SectionView, 0, len(sections))
	for i, s := range sections {
		view := SectionView{
			Title:   s.Title,
			Columns: s.Columns(),
			Open:    i == 0,
		}
		for _, f := range s.Fields {
			view.Controls = append(view.Controls, e.renderField(ctx, &f, values, errs, loading))
		}
		out = append(out, view)
	}
	return out
}

func (e *Engine) renderField(ctx context.Context, f *schema.FieldConfig, values map[string]any, errs map[string]string, loading bool) Control {
	c := Control{
		Kind:        f.Type,
		Name:        f.Name,
		Label:       f.Label,
		Placeholder: f.Placeholder,
		ClassName:   f.ClassName,
		Error:       errs[f.Name],
		Loading:     loading,
	}
	if v, ok := getPath(values, f.Name); ok {
		c.Value = v
	}

	switch f.Type {
	case schema.FieldDropdown, schema.FieldRadio:
		c.Options = e.options(ctx, f)
		if f.Dropdown != nil {
			c.IsMulti = f.Dropdown.IsMulti
		}
	case schema.FieldArray:
		c.Value = nil
		c.CanAppend = f.Array.CanAppend
		c.CanRemove = f.Array.CanRemove
		c.CanReorder = f.Array.CanReorder
		rows, _ := normalizeRows(mustGet(values, f.Name))
		for i, row := range rows {
			id, _ := row[rowIDKey].(string)
			ar := ArrayRow{ID: id}
			for _, item := range f.Array.ItemFields {
				if !item.Permitted() {
					continue
				}
				ic := Control{
					Kind:        item.Type,
					Name:        fmt.Sprintf("%s.%d.%s", f.Name, i, item.Name),
					Label:       item.Label,
					Placeholder: item.Placeholder,
					Value:       row[item.Name],
					Error:       errs[fmt.Sprintf("%s.%d.%s", f.Name, i, item.Name)],
				}
				if item.Type == schema.FieldDropdown || item.Type == schema.FieldRadio {
					ic.Options = e.options(ctx, &item)
				}
				ar.Controls = append(ar.Controls, ic)
			}
			c.Rows = append(c.Rows, ar)
		}
	case schema.FieldText, schema.FieldEmail, schema.FieldPassword,
		schema.FieldNumber, schema.FieldTextarea, schema.FieldSwitch,
		schema.FieldCheckbox, schema.FieldDate, schema.FieldDateRange:
		// Plain bound input; nothing extra.
	}
	return c
}

// options resolves a dropdown's option list: static lists verbatim,
// remote sources fetched once per field name and cached on the engine.
func (e *Engine) options(ctx context.Context, f *schema.FieldConfig) []schema.Option {
	if f.Dropdown == nil {
		return nil
	}
	if len(f.Dropdown.Options) > 0 {
		return f.Dropdown.Options
	}

	e.mu.Lock()
	if e.optionCache == nil {
		e.optionCache = map[string][]schema.Option{}
	}
	if opts, done := e.optionCache[f.Name]; done {
		e.mu.Unlock()
		return opts
	}
	e.mu.Unlock()

	rows, err := e.backend.Options(ctx, f.Dropdown.API)
	var opts []schema.Option
	if err != nil {
		logger.From(ctx).Warn("dropdown options fetch failed", "field", f.Name, "api", f.Dropdown.API, "err", err)
		opts = []schema.Option{}
	} else {
		opts = projectOptions(rows, f.Dropdown.Mapping)
	}

	e.mu.Lock()
	e.optionCache[f.Name] = opts
	e.mu.Unlock()
	return opts
}

func projectOptions(rows []map[string]any, mapping schema.ValueMapping) []schema.Option {
	idKey := mapping.IDKey
	if idKey == "" {
		idKey = "id"
	}
	labelKey := mapping.LabelKey
	if labelKey == "" {
		labelKey = "name"
	}
	out := make([]schema.Option, 0, len(rows))
	for _, row := range rows {
		out = append(out, schema.Option{
			Value: row[idKey],
			Label: fmt.Sprintf("%v", row[labelKey]),
		})
	}
	return out
}

func mustGet(state map[string]any, path string) any {
	v, _ := getPath(state, path)
	return v
}
