package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ispconsole/backoffice/internal/filter"
	"github.com/ispconsole/backoffice/internal/form"
	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/query"
	"github.com/ispconsole/backoffice/internal/service"
	"github.com/ispconsole/backoffice/internal/session"
	"github.com/ispconsole/backoffice/internal/theme"
)

// Handlers binds the service layer to the routes.
type Handlers struct {
	svc        *service.Entity
	sessions   *session.Manager
	filterOpts filter.Options
}

func NewHandlers(svc *service.Entity, sessions *session.Manager, filterOpts filter.Options) *Handlers {
	return &Handlers{svc: svc, sessions: sessions, filterOpts: filterOpts}
}

// uiConfig hands the frontend its behavioral knobs, so live-filter
// debounce and threshold are deployment settings rather than
// hardcoded in the bundle.
func (h *Handlers) uiConfig(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]any{
		"filterDebounceMs": h.filterOpts.Debounce.Milliseconds(),
		"filterMinChars":   h.filterOpts.MinChars,
	})
}

// listEntities renders the navigation menu: every registered entity
// with its title.
func (h *Handlers) listEntities(w http.ResponseWriter, r *http.Request) {
	type item struct {
		Name       string `json:"name"`
		Title      string `json:"title"`
		Exportable bool   `json:"exportable"`
	}
	var items []item
	for _, d := range h.svc.Registry() {
		items = append(items, item{Name: d.Name, Title: d.Title, Exportable: d.Exportable})
	}
	respond(w, r, http.StatusOK, items)
}

// list serves one table page. page and per_page are reserved params;
// everything else in the query string is a filter value.
func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	q := r.URL.Query()

	page := intParam(q.Get("page"), 1)
	perPage := intParam(q.Get("per_page"), query.DefaultPerPage)

	values := map[string]any{}
	for k, vs := range q {
		if k == "page" || k == "per_page" {
			continue
		}
		if len(vs) > 1 {
			values[k] = vs
		} else {
			values[k] = vs[0]
		}
	}
	filterQ := filter.Build(values, "")

	res, err := h.svc.List(r.Context(), entity, page, perPage, filterQ)
	if err != nil {
		respondError(w, r, err)
		return
	}

	columns := make([]map[string]any, 0, len(res.Columns))
	for _, c := range res.Columns {
		columns = append(columns, map[string]any{
			"key": c.Key, "title": c.Title, "sortable": c.Sortable, "hideable": c.Hideable,
		})
	}
	respond(w, r, http.StatusOK, map[string]any{
		"rows":       res.Rows,
		"pagination": res.Pagination,
		"buttons":    res.Pagination.Buttons(),
		"columns":    columns,
	})
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	row, err := h.svc.Get(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, row)
}

// schema renders the form for an entity. mode defaults to create;
// edit mode with an id pre-loads the record into the controls.
func (h *Handlers) schema(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	mode := form.ModeCreate
	if r.URL.Query().Get("mode") == string(form.ModeEdit) {
		mode = form.ModeEdit
	}

	eng, err := h.svc.NewForm(entity, mode, nil)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if mode == form.ModeEdit {
		id := r.URL.Query().Get("id")
		if id == "" {
			respondError(w, r, apperrors.Validation("edit mode requires an id"))
			return
		}
		if err := eng.Load(r.Context(), id); err != nil {
			respondError(w, r, err)
			return
		}
	}
	respond(w, r, http.StatusOK, map[string]any{
		"mode":     mode,
		"sections": eng.Render(r.Context()),
	})
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, form.ModeCreate, "")
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, form.ModeEdit, chi.URLParam(r, "id"))
}

// submit runs a mutation through the form engine so the schema's
// validation rules and refinements apply server-side too, not only in
// the rendered controls.
func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, mode form.Mode, id string) {
	entity := chi.URLParam(r, "entity")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, apperrors.Validation("request body is not valid JSON"))
		return
	}

	eng, err := h.svc.NewForm(entity, mode, nil)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if mode == form.ModeEdit {
		if err := eng.Load(r.Context(), id); err != nil {
			respondError(w, r, err)
			return
		}
	}
	for k, v := range body {
		eng.Set(k, v)
	}

	if err := eng.Submit(r.Context()); err != nil {
		if !eng.Valid() {
			respondInvalid(w, r, eng.Errors())
			return
		}
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if mode == form.ModeCreate {
		status = http.StatusCreated
	}
	respond(w, r, status, nil)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nil)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.Export(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"url": url})
}

func (h *Handlers) getTheme(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, theme.FromRequest(r))
}

func (h *Handlers) putTheme(w http.ResponseWriter, r *http.Request) {
	var s theme.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		respondError(w, r, apperrors.Validation("request body is not valid JSON"))
		return
	}
	if err := theme.Write(w, s); err != nil {
		respondError(w, r, apperrors.Validation(err.Error()))
		return
	}
	respond(w, r, http.StatusOK, s)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Host     string `json:"host"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, apperrors.Validation("request body is not valid JSON"))
		return
	}

	cookie, err := h.sessions.Login(r.Context(), body.Username, body.Password, body.Host)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.sessions.SetCookie(w, cookie)
	respond(w, r, http.StatusOK, map[string]string{"redirect": "/dashboard"})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	respond(w, r, http.StatusOK, map[string]string{"redirect": "/login"})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFrom(r.Context())
	if !ok {
		respondError(w, r, apperrors.Unauthorized("no session"))
		return
	}
	respond(w, r, http.StatusOK, map[string]string{
		"username": claims.Username,
		"role":     claims.Role,
	})
}

func intParam(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
