// Package client talks to the Remote Activity Service.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"activities-cli/internal/model"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// Client wraps http.Client with base URL handling and the service's error contract.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

type Options struct {
	BaseURL string
	// Timeout bounds each request; zero means 10s.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = "http://127.0.0.1:8000"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{baseURL: base, http: hc, timeout: timeout, logger: logger}
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListActivities fetches GET /activities. Any failure (transport, status, body)
// is returned as an error; the caller treats all of them as a failed load.
func (c *Client) ListActivities(ctx context.Context) (model.Snapshot, error) {
	const op = "list activities"
	res, reqID, err := c.do(ctx, op, http.MethodGet, "/activities")
	if err != nil {
		return model.Snapshot{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return model.Snapshot{}, &TransportError{Op: op, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Warn("activities fetch unexpected status", slog.Int("status", res.StatusCode), slog.String("request_id", reqID))
		return model.Snapshot{}, &APIError{Op: op, Status: res.StatusCode, Detail: detailFrom(body)}
	}
	snap, err := model.DecodeSnapshot(body)
	if err != nil {
		c.logger.Warn("activities decode failed", slog.String("request_id", reqID), slog.Any("error", err))
		return model.Snapshot{}, &DecodeError{Op: op, Status: res.StatusCode, Err: err}
	}
	c.logger.Debug("activities fetched", slog.Int("count", snap.Len()), slog.String("request_id", reqID))
	return snap, nil
}

// Signup posts /activities/{activity}/signup?email={participant} and returns
// the server's success message.
func (c *Client) Signup(ctx context.Context, activity, participant string) (string, error) {
	return c.mutate(ctx, "signup", http.MethodPost, activityPath(activity, "signup", participant), activity)
}

// Unregister deletes /activities/{activity}/participants?email={participant}
// and returns the server's success message.
func (c *Client) Unregister(ctx context.Context, activity, participant string) (string, error) {
	return c.mutate(ctx, "unregister", http.MethodDelete, activityPath(activity, "participants", participant), activity)
}

func activityPath(activity, action, participant string) string {
	q := url.Values{}
	q.Set("email", participant)
	return "/activities/" + url.PathEscape(activity) + "/" + action + "?" + q.Encode()
}

type messageBody struct {
	Message *string `json:"message"`
}

func (c *Client) mutate(ctx context.Context, op, method, endpoint, activity string) (string, error) {
	res, reqID, err := c.do(ctx, op, method, endpoint)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := detailFrom(body)
		c.logger.Info("mutation rejected",
			slog.String("op", op),
			slog.String("activity", activity),
			slog.Int("status", res.StatusCode),
			slog.String("detail", detail),
			slog.String("request_id", reqID))
		return "", &APIError{Op: op, Status: res.StatusCode, Detail: detail}
	}

	var mb messageBody
	if err := json.Unmarshal(body, &mb); err != nil {
		return "", &DecodeError{Op: op, Status: res.StatusCode, Err: err}
	}
	if mb.Message == nil {
		return "", &DecodeError{Op: op, Status: res.StatusCode, Err: errors.New("missing message")}
	}
	c.logger.Debug("mutation applied", slog.String("op", op), slog.String("activity", activity), slog.String("request_id", reqID))
	return *mb.Message, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string) (*http.Response, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		cancel()
		return nil, "", fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	c.logger.Debug("request", slog.String("method", method), slog.String("url", req.URL.String()), slog.String("request_id", reqID))

	res, err := c.http.Do(req)
	if err != nil {
		cancel()
		c.logger.Warn("request failed", slog.String("op", op), slog.String("request_id", reqID), slog.Any("error", err))
		return nil, reqID, &TransportError{Op: op, Err: err}
	}
	res.Body = cancelOnClose{ReadCloser: res.Body, cancel: cancel}
	return res, reqID, nil
}

// detailFrom extracts a string `detail` field. Non-string details (e.g.
// validation error lists) are ignored so callers fall back to generic text.
func detailFrom(body []byte) string {
	var v struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}
	s, _ := v.Detail.(string)
	return s
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
