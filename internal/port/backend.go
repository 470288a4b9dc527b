// Package port declares the interfaces between the engines and the
// outside world: the remote back-office API, the query cache, the
// invalidation bus, and object storage.
package port

import (
	"context"

	"github.com/ispconsole/backoffice/internal/table"
)

// ListPage is one page of rows as returned by the list endpoint
// convention GET /{entity}?page={n}&{filter}.
type ListPage struct {
	Rows       []map[string]any
	Pagination table.Pagination
}

// Identity is the outcome of a successful login: the bearer token for
// subsequent calls and the role the remote account carries.
type Identity struct {
	Token string
	Role  string
}

// Backend is the remote REST API. Every method carries the caller's
// bearer token through the context (see session.WithToken).
type Backend interface {
	List(ctx context.Context, entity string, page, perPage int, filterQuery string) (ListPage, error)
	Get(ctx context.Context, entity, id string) (map[string]any, error)
	Create(ctx context.Context, entity string, payload map[string]any) (map[string]any, error)
	Update(ctx context.Context, entity, id string, payload map[string]any) (map[string]any, error)
	Delete(ctx context.Context, entity, id string) error

	// Options fetches the rows behind a dropdown's api source.
	Options(ctx context.Context, api string) ([]map[string]any, error)

	// Login exchanges credentials for a bearer token and the
	// account's role.
	Login(ctx context.Context, username, password, host string) (Identity, error)
}
