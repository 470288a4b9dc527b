// Package service orchestrates the entity operations the transport
// exposes: listing through the query engine, mutations through the
// form engine, deletes and PDF exports.
package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ispconsole/backoffice/internal/domain"
	"github.com/ispconsole/backoffice/internal/form"
	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/report"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/query"
	"github.com/ispconsole/backoffice/internal/table"
)

// CompanyName appears on generated exports.
// TODO: read it from the remote API's settings endpoint once it exists.
const CompanyName = "ISP Console"

const presignExpiry = 15 * time.Minute

type Entity struct {
	backend port.Backend
	engine  *query.Engine
	notify  port.Notifier
	reg     map[string]domain.Descriptor
	reports *report.Generator
	store   port.ObjectStore
}

// NewEntity builds the orchestrator. store may be nil; exports then
// fail with a clear error instead of at startup.
func NewEntity(backend port.Backend, engine *query.Engine, notify port.Notifier, store port.ObjectStore) *Entity {
	return &Entity{
		backend: backend,
		engine:  engine,
		notify:  notify,
		reg:     domain.Registry(),
		reports: report.NewGenerator(),
		store:   store,
	}
}

// Registry returns every descriptor sorted by name, for the menu.
func (s *Entity) Registry() []domain.Descriptor {
	names := make([]string, 0, len(s.reg))
	for name := range s.reg {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]domain.Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, s.reg[name])
	}
	return out
}

// Descriptor resolves an entity by name.
func (s *Entity) Descriptor(entity string) (domain.Descriptor, error) {
	d, ok := s.reg[entity]
	if !ok {
		return domain.Descriptor{}, apperrors.New(http.StatusNotFound, "Not Found",
			fmt.Sprintf("unknown entity %q", entity))
	}
	return d, nil
}

// ListResult is one rendered table page.
type ListResult struct {
	Rows       []domain.Row
	Pagination table.Pagination
	Columns    []table.Column[domain.Row]
}

// List loads one table page. The entity's default filter rides along
// with whatever the filter bar built.
func (s *Entity) List(ctx context.Context, entity string, page, perPage int, filterQ string) (ListResult, error) {
	d, err := s.Descriptor(entity)
	if err != nil {
		return ListResult{}, err
	}

	v := s.engine.NewView(entity, s.notify)
	v.Init(page, perPage, mergeFilter(filterQ, d.DefaultFilter))
	if err := v.Load(ctx); err != nil {
		return ListResult{}, err
	}

	rows, err := d.Rows(v.Rows())
	if err != nil {
		return ListResult{}, apperrors.Upstream(err.Error())
	}
	return ListResult{
		Rows:       rows,
		Pagination: v.Pagination(),
		Columns:    d.Columns,
	}, nil
}

// Get reads one record.
func (s *Entity) Get(ctx context.Context, entity, id string) (domain.Row, error) {
	if _, err := s.Descriptor(entity); err != nil {
		return nil, err
	}
	obj, err := s.backend.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	return domain.Row(obj), nil
}

// Delete removes a record, evicts every cached page of the entity and
// raises a toast either way.
func (s *Entity) Delete(ctx context.Context, entity, id string) error {
	d, err := s.Descriptor(entity)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, entity, id); err != nil {
		s.notify.Error(ctx, apperrors.MessageOf(err, "Delete failed"))
		return err
	}
	s.engine.Invalidate(ctx, entity)
	s.notify.Success(ctx, fmt.Sprintf("%s deleted successfully", strings.TrimSuffix(d.Title, "s")))
	return nil
}

// NewForm builds a form engine for the entity in the given mode.
func (s *Entity) NewForm(entity string, mode form.Mode, onClose func()) (*form.Engine, error) {
	d, err := s.Descriptor(entity)
	if err != nil {
		return nil, err
	}
	return form.NewEngine(d.FormSchema(mode), mode, s.backend, s.engine, s.notify, onClose), nil
}

// Invalidate evicts every cached page of an entity, here and on peers.
func (s *Entity) Invalidate(ctx context.Context, entity string) {
	s.engine.Invalidate(ctx, entity)
}

func mergeFilter(filterQ, defaultFilter string) string {
	switch {
	case defaultFilter == "":
		return filterQ
	case filterQ == "":
		return defaultFilter
	case strings.Contains(filterQ, defaultFilter):
		return filterQ
	default:
		return filterQ + "&" + defaultFilter
	}
}
