package form

import (
	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/schema"
)

// AppendItem adds a new row from the array's item template.
func (e *Engine) AppendItem(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.arrayField(name)
	if f == nil {
		return apperrors.New(400, "Form Error", "no such field array: "+name)
	}
	if !f.Array.CanAppend {
		return apperrors.New(403, "Form Error", "append is not permitted on "+name)
	}
	rows := e.rowsLocked(name)
	if f.Array.MaxItems > 0 && len(rows) >= f.Array.MaxItems {
		return apperrors.Validation("item limit reached")
	}
	rows = append(rows, newArrayRow(f.Array))
	setPath(e.values, name, rows)
	e.validateLocked()
	return nil
}

// RemoveItem deletes the row with the given synthetic id.
func (e *Engine) RemoveItem(name, rowID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.arrayField(name)
	if f == nil {
		return apperrors.New(400, "Form Error", "no such field array: "+name)
	}
	if !f.Array.CanRemove {
		return apperrors.New(403, "Form Error", "remove is not permitted on "+name)
	}
	rows := e.rowsLocked(name)
	kept := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if row[rowIDKey] != rowID {
			kept = append(kept, row)
		}
	}
	if len(kept) == len(rows) {
		return apperrors.New(404, "Form Error", "row not found")
	}
	if f.Array.MinItems > 0 && len(kept) < f.Array.MinItems {
		return apperrors.Validation("minimum item count reached")
	}
	setPath(e.values, name, kept)
	e.validateLocked()
	return nil
}

// MoveItem repositions the row with the given id to index to.
func (e *Engine) MoveItem(name, rowID string, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.arrayField(name)
	if f == nil {
		return apperrors.New(400, "Form Error", "no such field array: "+name)
	}
	if !f.Array.CanReorder {
		return apperrors.New(403, "Form Error", "reorder is not permitted on "+name)
	}
	rows := e.rowsLocked(name)
	from := -1
	for i, row := range rows {
		if row[rowIDKey] == rowID {
			from = i
			break
		}
	}
	if from == -1 {
		return apperrors.New(404, "Form Error", "row not found")
	}
	if to < 0 || to >= len(rows) {
		return apperrors.Validation("target position out of range")
	}
	row := rows[from]
	rows = append(rows[:from], rows[from+1:]...)
	rest := make([]map[string]any, 0, len(rows)+1)
	rest = append(rest, rows[:to]...)
	rest = append(rest, row)
	rest = append(rest, rows[to:]...)
	setPath(e.values, name, rest)
	e.validateLocked()
	return nil
}

// RowIDs returns the synthetic ids of an array's rows in order.
func (e *Engine) RowIDs(name string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows := e.rowsLocked(name)
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row[rowIDKey].(string); ok {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) arrayField(name string) *schema.FieldConfig {
	for _, f := range schema.Fields(e.def.Sections) {
		if f.Name == name && f.Type == schema.FieldArray && f.Array != nil {
			cfg := f
			return &cfg
		}
	}
	return nil
}

func (e *Engine) rowsLocked(name string) []map[string]any {
	v, _ := getPath(e.values, name)
	rows, _ := normalizeRows(v)
	return rows
}
