package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/schema"
)

var validate = validator.New()

// Mode selects the submit verb and the defaulting behavior.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// State is the form lifecycle. Error and Success both settle back to
// Idle: success through reset, error when the user edits to retry.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Refinement is a cross-field check the per-field rules cannot
// express, e.g. password/confirm equality. Ok returns true when the
// state passes; the message lands on every listed field.
type Refinement struct {
	Fields  []string
	Message string
	Ok      func(values map[string]any) bool
}

// Definition is the form schema: sections of field configs plus
// cross-field refinements and the cache keys to invalidate on success.
// Definitions are pure data built fresh per render; the engine never
// mutates one.
type Definition struct {
	Entity         string
	Path           string
	Sections       []schema.Section
	Refinements    []Refinement
	InvalidateKeys []string
}

// Invalidator evicts list caches after a successful mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, entity string)
}

// Engine drives one mounted form.
type Engine struct {
	def     Definition
	mode    Mode
	backend port.Backend
	inval   Invalidator
	notify  port.Notifier
	onClose func()

	mu          sync.Mutex
	state       State
	loading     bool
	recordID    string
	values      map[string]any
	baseline    map[string]any
	errs        map[string]string
	optionCache map[string][]schema.Option
}

// NewEngine builds a form engine. Initial values come from the
// schema's defaults; edit mode overlays the loaded record in Load.
func NewEngine(def Definition, mode Mode, backend port.Backend, inval Invalidator, notify port.Notifier, onClose func()) *Engine {
	e := &Engine{
		def:     def,
		mode:    mode,
		backend: backend,
		inval:   inval,
		notify:  notify,
		onClose: onClose,
		state:   StateIdle,
		errs:    map[string]string{},
	}
	e.baseline = e.defaults()
	e.values = deepCopy(e.baseline).(map[string]any)
	return e
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Loading reports whether the edit-mode read fetch is pending; inputs
// show a loading indicator while true.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Values returns a copy of the current form state.
func (e *Engine) Values() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return deepCopy(e.values).(map[string]any)
}

// Errors returns the current validation errors keyed by field path;
// field-array entries use name.index.subfield keys.
func (e *Engine) Errors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.errs))
	for k, v := range e.errs {
		out[k] = v
	}
	return out
}

// Load performs the edit-mode read fetch. The fetched payload becomes
// the defaults baseline the user edits against.
func (e *Engine) Load(ctx context.Context, id string) error {
	if e.mode != ModeEdit {
		return apperrors.New(400, "Form Error", "load is only valid in edit mode")
	}
	e.mu.Lock()
	e.recordID = id
	e.loading = true
	e.mu.Unlock()

	record, err := e.backend.Get(ctx, e.def.Path, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		if e.notify != nil {
			e.notify.Error(ctx, apperrors.MessageOf(err, err.Error()))
		}
		return err
	}

	base := e.defaults()
	for k, v := range record {
		base[k] = deepCopy(v)
	}
	tagArrayRows(e.def.Sections, base)
	e.baseline = base
	e.values = deepCopy(base).(map[string]any)
	return nil
}

// Set writes one field value and re-runs validation (the form
// validates on change, not only at submit). An errored form returns to
// idle so the user can retry.
func (e *Engine) Set(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	setPath(e.values, name, value)
	if e.state == StateError || e.state == StateSuccess {
		e.state = StateIdle
	}
	e.validateLocked()
}

// Valid reports whether the last validation pass found no errors.
func (e *Engine) Valid() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs) == 0
}

// Submit sends the full current state. Submission is blocked while
// any field fails validation; the caller keeps the form populated on
// failure so the user can correct and resubmit.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	e.validateLocked()
	if len(e.errs) > 0 {
		e.mu.Unlock()
		return apperrors.Validation("form has validation errors")
	}
	e.state = StateSubmitting
	payload := stripRowIDs(e.values).(map[string]any)
	mode := e.mode
	id := e.recordID
	e.mu.Unlock()

	var err error
	switch mode {
	case ModeCreate:
		_, err = e.backend.Create(ctx, e.def.Path, payload)
	case ModeEdit:
		_, err = e.backend.Update(ctx, e.def.Path, id, payload)
	default:
		err = fmt.Errorf("unknown form mode %q", mode)
	}

	if err != nil {
		e.mu.Lock()
		e.state = StateError
		e.mu.Unlock()
		if e.notify != nil {
			e.notify.Error(ctx, apperrors.MessageOf(err, err.Error()))
		}
		return err
	}

	// Success stays observable until the next Set returns the form to
	// idle.
	e.mu.Lock()
	e.state = StateSuccess
	e.values = deepCopy(e.baseline).(map[string]any)
	e.errs = map[string]string{}
	e.mu.Unlock()

	if e.inval != nil {
		for _, key := range e.invalidateKeys() {
			e.inval.Invalidate(ctx, key)
		}
	}
	if e.notify != nil {
		e.notify.Success(ctx, "Saved successfully")
	}
	logger.From(ctx).Info("form submitted", "entity", e.def.Entity, "mode", string(mode))
	if e.onClose != nil {
		e.onClose()
	}
	return nil
}

// Cancel discards in-progress edits and closes without submitting.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.values = deepCopy(e.baseline).(map[string]any)
	e.errs = map[string]string{}
	e.state = StateIdle
	e.mu.Unlock()
	if e.onClose != nil {
		e.onClose()
	}
}

func (e *Engine) invalidateKeys() []string {
	if len(e.def.InvalidateKeys) > 0 {
		return e.def.InvalidateKeys
	}
	return []string{e.def.Entity}
}

// defaults builds the initial state from the schema's default values;
// field arrays start with MinItems rows of the item template.
func (e *Engine) defaults() map[string]any {
	out := map[string]any{}
	for _, f := range schema.Fields(e.def.Sections) {
		if !f.Permitted() {
			continue
		}
		if f.Type == schema.FieldArray && f.Array != nil {
			n := f.Array.MinItems
			rows := make([]map[string]any, 0, n)
			for i := 0; i < n; i++ {
				rows = append(rows, newArrayRow(f.Array))
			}
			setPath(out, f.Name, rows)
			continue
		}
		if f.Default != nil {
			setPath(out, f.Name, deepCopy(f.Default))
		}
	}
	return out
}

func newArrayRow(cfg *schema.ArrayConfig) map[string]any {
	row := map[string]any{rowIDKey: uuid.NewString()}
	for k, v := range cfg.DefaultItem {
		row[k] = deepCopy(v)
	}
	return row
}

// tagArrayRows assigns row ids to array rows that arrived from the
// backend without one.
func tagArrayRows(sections []schema.Section, state map[string]any) {
	for _, f := range schema.Fields(sections) {
		if f.Type != schema.FieldArray {
			continue
		}
		v, ok := getPath(state, f.Name)
		if !ok {
			continue
		}
		rows, ok := normalizeRows(v)
		if !ok {
			continue
		}
		for _, row := range rows {
			if _, has := row[rowIDKey]; !has {
				row[rowIDKey] = uuid.NewString()
			}
		}
		setPath(state, f.Name, rows)
	}
}

// normalizeRows coerces the JSON shapes an array value may arrive in.
func normalizeRows(v any) ([]map[string]any, bool) {
	switch rows := v.(type) {
	case []map[string]any:
		return rows, true
	case []any:
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			m, ok := r.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}
