// Package client talks to the task server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/config"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/logger"
)

const maxResponseBytes = 1 << 20

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues task requests against a single server.
type Client struct {
	baseURL         string
	httpClient      Doer
	retryMaxElapsed time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// New creates a client for cfg.Server.
func New(cfg config.ClientConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:         cfg.BaseURL(),
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		retryMaxElapsed: cfg.RetryMaxElapsed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the authoritative task list.
func (c *Client) List(ctx context.Context) ([]api.Task, error) {
	const op = "List tasks"

	body, err := c.do(ctx, op, http.MethodGet, api.TasksPath, nil)
	if err != nil {
		return nil, err
	}

	var resp api.TaskListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, taskerrors.NewMalformedResponseError(op, err)
	}
	return api.CloneTasks(resp.Tasks), nil
}

// ListWithRetry fetches the task list, retrying transport failures with
// exponential backoff until RetryMaxElapsed has passed. Errors the server
// reported are returned immediately.
func (c *Client) ListWithRetry(ctx context.Context) ([]api.Task, error) {
	var tasks []api.Task

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = c.retryMaxElapsed

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		result, err := c.List(ctx)
		if err == nil {
			tasks = result
			return nil
		}
		if ctx.Err() != nil || !taskerrors.IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		logger.Op.WithFields(map[string]interface{}{
			"attempt": attempt,
			"next":    next.String(),
			"error":   err.Error(),
		}).Warn("List tasks failed, retrying")
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Add appends task to the end of the server's list.
func (c *Client) Add(ctx context.Context, task api.Task) error {
	return c.mutate(ctx, "Add task", http.MethodPost, api.TasksPath, task)
}

// Replace overwrites the task at the zero-based index.
func (c *Client) Replace(ctx context.Context, index int, task api.Task) error {
	return c.mutate(ctx, "Replace task", http.MethodPut, api.TaskPathFor(index), task)
}

// Delete removes the task at the zero-based index.
func (c *Client) Delete(ctx context.Context, index int) error {
	return c.mutate(ctx, "Delete task", http.MethodDelete, api.TaskPathFor(index), nil)
}

// Ping checks the server is up.
func (c *Client) Ping(ctx context.Context) error {
	const op = "Ping"

	body, err := c.do(ctx, op, http.MethodGet, api.PingPath, nil)
	if err != nil {
		return err
	}

	var resp api.PingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return taskerrors.NewMalformedResponseError(op, err)
	}
	if !resp.Pong {
		return taskerrors.NewNotConfirmedError(op)
	}
	return nil
}

// mutate sends a mutation and requires an explicit success:true in reply.
func (c *Client) mutate(ctx context.Context, op, method, path string, payload interface{}) error {
	body, err := c.do(ctx, op, method, path, payload)
	if err != nil {
		return err
	}

	var resp api.SuccessResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return taskerrors.NewMalformedResponseError(op, err)
	}
	if !resp.Success {
		return taskerrors.NewNotConfirmedError(op)
	}
	return nil
}

// do performs one request and returns the body of a 2xx response. Any other
// response is decoded as the server's error envelope.
func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}) ([]byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, taskerrors.NewUnreachableError(op, url, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(api.RequestIDHeader, requestID)

	fields := map[string]interface{}{
		"method":     method,
		"url":        url,
		"request_id": requestID,
	}
	logger.Op.WithFields(fields).Debug("Sending request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, taskerrors.NewUnreachableError(op, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, taskerrors.NewUnreachableError(op, url, err)
	}

	fields["status"] = resp.StatusCode
	fields["duration"] = time.Since(start).String()
	logger.Op.WithFields(fields).Debug("Received response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var envelope api.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		if err == nil {
			err = fmt.Errorf("unexpected %d response: %s", resp.StatusCode, string(body))
		}
		return nil, taskerrors.NewMalformedResponseError(op, err).
			WithContext("status", resp.StatusCode)
	}
	return nil, taskerrors.NewRejectedError(op, resp.StatusCode, envelope.Error.Code, envelope.Error.Message).
		WithContext("request_id", requestID)
}
