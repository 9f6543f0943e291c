// Package client talks to the taskpad REST API and implements
// optimistic.Collection for tasks and notes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/pkg/respond"
)

// APIError is a non-2xx response. It unwraps to the matching model sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrConflict
	case http.StatusBadRequest:
		return model.ErrValidation
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusUnauthorized:
		return auth.ErrInvalidToken
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// New builds a client for the API at baseURL. token is read before every
// request so a session change is picked up without rebuilding the client.
func New(baseURL string, token func() string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		token:  token,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode >= 300 {
		var eb respond.ErrorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, respond.MaxBodyBytes))
		if err := json.Unmarshal(data, &eb); err != nil {
			eb.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Collection is the remote side of one entity kind.
type Collection[T model.Entity[T], P model.Patch[T, P]] struct {
	client *Client
	path   string
}

func Tasks(c *Client) *Collection[model.Task, model.TaskPatch] {
	return &Collection[model.Task, model.TaskPatch]{client: c, path: "/api/v1/tasks"}
}

func Notes(c *Client) *Collection[model.Note, model.NotePatch] {
	return &Collection[model.Note, model.NotePatch]{client: c, path: "/api/v1/notes"}
}

func (col *Collection[T, P]) List(ctx context.Context, ownerID string, order model.Order) ([]T, error) {
	q := url.Values{}
	q.Set("owner_id", ownerID)
	q.Set("order", order.Field)
	q.Set("dir", order.Direction())

	var items []T
	if err := col.client.do(ctx, http.MethodGet, col.path+"?"+q.Encode(), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (col *Collection[T, P]) Create(ctx context.Context, entity T) (T, error) {
	var created T
	err := col.client.do(ctx, http.MethodPost, col.path, entity, &created)
	return created, err
}

func (col *Collection[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var updated T
	err := col.client.do(ctx, http.MethodPatch, col.path+"/"+url.PathEscape(id), patch, &updated)
	return updated, err
}

func (col *Collection[T, P]) Delete(ctx context.Context, id string) error {
	return col.client.do(ctx, http.MethodDelete, col.path+"/"+url.PathEscape(id), nil, nil)
}

// IsUnauthorized reports whether err is a rejected or missing token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken)
}
