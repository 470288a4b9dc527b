// Package backend implements port.Backend against the remote
// back-office REST API. Every response is an envelope
// {success, data, message, error}; a 2xx with success=false is an
// EnvelopeError, not a transport failure, and is never retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ispconsole/backoffice/internal/pkg/circuitbreaker"
	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/session"
	"github.com/ispconsole/backoffice/internal/table"
)

// Client talks to {baseURL}/api/{version}. One breaker guards the
// whole upstream; a backend that is down for staffs is down for
// clients too.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.Breaker
}

// New builds a client. timeout zero means no client-side timeout; the
// caller's context still bounds each call.
func New(baseURL, version string, timeout time.Duration) *Client {
	return &Client{
		baseURL: fmt.Sprintf("%s/api/%s", baseURL, version),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New(5, 30*time.Second, 1),
	}
}

// envelope is the wire shape of every response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type listBody struct {
	Data       []map[string]any `json:"data"`
	Pagination table.Pagination `json:"pagination"`
}

// List implements the list convention
// GET /{entity}?page={n}&per_page={m}&{filter}.
func (c *Client) List(ctx context.Context, entity string, page, perPage int, filterQuery string) (port.ListPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	target := c.baseURL + "/" + entity + "?" + q.Encode()
	if filterQuery != "" {
		target += "&" + filterQuery
	}

	env, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return port.ListPage{}, err
	}

	var body listBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		return port.ListPage{}, apperrors.Upstream(fmt.Sprintf("decode %s list: %v", entity, err))
	}
	return port.ListPage{Rows: body.Data, Pagination: body.Pagination}, nil
}

func (c *Client) Get(ctx context.Context, entity, id string) (map[string]any, error) {
	env, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+entity+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(env.Data, entity)
}

func (c *Client) Create(ctx context.Context, entity string, payload map[string]any) (map[string]any, error) {
	env, err := c.do(ctx, http.MethodPost, c.baseURL+"/"+entity, payload)
	if err != nil {
		return nil, err
	}
	return decodeObject(env.Data, entity)
}

func (c *Client) Update(ctx context.Context, entity, id string, payload map[string]any) (map[string]any, error) {
	env, err := c.do(ctx, http.MethodPut, c.baseURL+"/"+entity+"/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	return decodeObject(env.Data, entity)
}

func (c *Client) Delete(ctx context.Context, entity, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.baseURL+"/"+entity+"/"+url.PathEscape(id), nil)
	return err
}

// Options fetches dropdown rows. The endpoint may wrap the array in a
// paginated body or return it bare; both shapes occur in the wild.
func (c *Client) Options(ctx context.Context, api string) ([]map[string]any, error) {
	env, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+api, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(env.Data, &rows); err == nil {
		return rows, nil
	}
	var body listBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("decode %s options: %v", api, err))
	}
	return body.Data, nil
}

// Login exchanges credentials for a bearer token and the account's
// role. The host field selects the tenant on multi-host deployments.
// The role lives either at the top of the data object or inside a
// nested user object, depending on the upstream version.
func (c *Client) Login(ctx context.Context, username, password, host string) (port.Identity, error) {
	env, err := c.do(ctx, http.MethodPost, c.baseURL+"/login", map[string]any{
		"username": username,
		"password": password,
		"host":     host,
	})
	if err != nil {
		return port.Identity{}, err
	}

	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
		User        struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		return port.Identity{}, apperrors.Upstream(fmt.Sprintf("decode login response: %v", err))
	}

	id := port.Identity{Token: body.Token, Role: body.Role}
	if id.Token == "" {
		id.Token = body.AccessToken
	}
	if id.Role == "" {
		id.Role = body.User.Role
	}
	if id.Token == "" {
		return port.Identity{}, apperrors.Upstream("login response carried no token")
	}
	return id, nil
}

// do performs one request through the breaker and unwraps the
// envelope. Transport and 5xx failures count against the breaker;
// envelope refusals do not.
func (c *Client) do(ctx context.Context, method, target string, payload map[string]any) (*envelope, error) {
	var env *envelope
	var callErr error
	err := c.breaker.Do(func() error {
		env, callErr = c.roundTrip(ctx, method, target, payload)
		var envErr *port.EnvelopeError
		if stderrors.As(callErr, &envErr) {
			// The upstream answered; it just said no. Not a breaker
			// failure.
			return nil
		}
		return callErr
	})
	if err == circuitbreaker.ErrOpen {
		return nil, apperrors.Upstream("backend temporarily unavailable")
	}
	if callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (c *Client) roundTrip(ctx context.Context, method, target string, payload map[string]any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := session.TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("%s %s: %v", method, target, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("read %s response: %v", target, err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.Unauthorized(extractMessage(raw, "Session expired"))
	}
	if resp.StatusCode >= 500 {
		logger.From(ctx).Warn("backend server error",
			"method", method, "status", resp.StatusCode)
		return nil, apperrors.Upstream(fmt.Sprintf("backend returned %d", resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("decode envelope: %v", err))
	}
	if !env.Success {
		return nil, &port.EnvelopeError{Message: extractMessage(raw, "Request was not successful")}
	}
	return &env, nil
}

func decodeObject(data json.RawMessage, entity string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("decode %s object: %v", entity, err))
	}
	return obj, nil
}
