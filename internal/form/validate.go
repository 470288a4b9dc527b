package form

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ispconsole/backoffice/internal/schema"
)

// validateLocked re-runs the whole validation pass. Callers hold e.mu.
func (e *Engine) validateLocked() {
	e.errs = map[string]string{}

	for _, f := range schema.Fields(e.def.Sections) {
		if !f.Permitted() {
			continue
		}
		if f.Type == schema.FieldArray {
			e.validateArrayLocked(&f)
			continue
		}
		value, _ := getPath(e.values, f.Name)
		if msg := checkValue(value, &f); msg != "" {
			e.errs[f.Name] = msg
		}
	}

	for _, ref := range e.def.Refinements {
		if ref.Ok(e.values) {
			continue
		}
		for _, name := range ref.Fields {
			if _, taken := e.errs[name]; !taken {
				e.errs[name] = ref.Message
			}
		}
	}
}

func (e *Engine) validateArrayLocked(f *schema.FieldConfig) {
	v, _ := getPath(e.values, f.Name)
	rows, _ := normalizeRows(v)

	if f.Array.MinItems > 0 && len(rows) < f.Array.MinItems {
		e.errs[f.Name] = fmt.Sprintf("At least %d items required", f.Array.MinItems)
	}
	if f.Array.MaxItems > 0 && len(rows) > f.Array.MaxItems {
		e.errs[f.Name] = fmt.Sprintf("At most %d items allowed", f.Array.MaxItems)
	}

	// Errors are keyed name.index.subfield on the wire; the row id
	// keeps attribution stable across remove and reorder because the
	// index is recomputed from the row's current position every pass.
	for i, row := range rows {
		for _, item := range f.Array.ItemFields {
			if !item.Permitted() {
				continue
			}
			if msg := checkValue(row[item.Name], &item); msg != "" {
				e.errs[fmt.Sprintf("%s.%d.%s", f.Name, i, item.Name)] = msg
			}
		}
	}
}

// checkValue validates a single value against the field's implied and
// declared rules. Empty string means valid.
func checkValue(value any, f *schema.FieldConfig) string {
	tag := ruleTag(f)
	if tag == "" {
		return ""
	}
	if err := validate.Var(value, tag); err != nil {
		return humanize(err, f)
	}
	return ""
}

// ruleTag assembles the validator tag: required from the label's
// mandatory flag, a type-implied format check, then any declared
// rules. Optional fields get omitempty so blank values pass.
func ruleTag(f *schema.FieldConfig) string {
	var parts []string
	if f.Label != nil && f.Label.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "omitempty")
	}
	if f.Type == schema.FieldEmail {
		parts = append(parts, "email")
	}
	if f.Rules != "" {
		parts = append(parts, f.Rules)
	}
	if len(parts) == 1 && parts[0] == "omitempty" {
		return ""
	}
	return strings.Join(parts, ",")
}

func humanize(err error, f *schema.FieldConfig) string {
	var ve validator.ValidationErrors
	if !asValidationErrors(err, &ve) || len(ve) == 0 {
		return "Invalid value"
	}
	switch ve[0].Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s", ve[0].Param())
	case "max":
		return fmt.Sprintf("Must be at most %s", ve[0].Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", ve[0].Param())
	default:
		return fmt.Sprintf("Failed %s validation", ve[0].Tag())
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
