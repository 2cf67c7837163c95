package platform

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

	"github.com/google/uuid"

	"github.com/gastrohub/console-backend/pkg/config"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("platform base url is required")
	errLoggerRequired  = errors.New("platform logger is required")
)

// Client talks to the order-issue platform with centralized auth, logging,
// timeouts, and error mapping. It is the only place console code touches the
// platform wire format.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logger.Logger
}

// NewClient initializes the platform client and validates the configuration.
func NewClient(ctx context.Context, cfg config.PlatformConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing platform base url: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		logger:     logg,
	}

	logg.Info(ctx, "platform client initialized")
	return c, nil
}

// NewIdempotencyKey returns a unique key for a single refund attempt.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "gh"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

// ListIssues fetches all issues for a restaurant.
func (c *Client) ListIssues(ctx context.Context, restaurantID string) ([]OrderIssue, error) {
	c.log(ctx, "request", "list_issues", map[string]any{"restaurant_id": restaurantID})

	var issues []OrderIssue
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/order-issues/restaurant/%s", url.PathEscape(restaurantID)), nil, "", &issues)
	if err != nil {
		c.log(ctx, "error", "list_issues", map[string]any{"error": err.Error()})
		return nil, err
	}

	for _, issue := range issues {
		if vErr := issue.Validate(); vErr != nil {
			c.log(ctx, "error", "list_issues", map[string]any{"error": vErr.Error()})
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, vErr, "platform returned malformed issue")
		}
	}

	c.log(ctx, "response", "list_issues", map[string]any{"count": len(issues)})
	return issues, nil
}

// UpdateStatus patches the restaurant-facing status of an issue.
func (c *Client) UpdateStatus(ctx context.Context, issueID string, status string) (*OrderIssue, error) {
	c.log(ctx, "request", "update_status", map[string]any{"issue_id": issueID, "status": status})

	body := map[string]string{"status": status}
	var issue OrderIssue
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/order-issues/%s/restaurant-status", url.PathEscape(issueID)), body, "", &issue)
	if err != nil {
		c.log(ctx, "error", "update_status", map[string]any{"error": err.Error()})
		return nil, err
	}
	if vErr := issue.Validate(); vErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, vErr, "platform returned malformed issue")
	}

	c.log(ctx, "response", "update_status", map[string]any{"issue_id": issue.ID, "status": issue.Status.String()})
	return &issue, nil
}

// UpdateNotes patches the restaurant manager notes of an issue.
func (c *Client) UpdateNotes(ctx context.Context, issueID string, notes string) (*OrderIssue, error) {
	c.log(ctx, "request", "update_notes", map[string]any{"issue_id": issueID})

	body := map[string]string{"notes": notes}
	var issue OrderIssue
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/order-issues/%s/restaurant-notes", url.PathEscape(issueID)), body, "", &issue)
	if err != nil {
		c.log(ctx, "error", "update_notes", map[string]any{"error": err.Error()})
		return nil, err
	}
	if vErr := issue.Validate(); vErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, vErr, "platform returned malformed issue")
	}

	c.log(ctx, "response", "update_notes", map[string]any{"issue_id": issue.ID})
	return &issue, nil
}

// FetchOrderItems loads the immutable line items of the order behind an issue.
func (c *Client) FetchOrderItems(ctx context.Context, issueID string) ([]OrderItem, error) {
	c.log(ctx, "request", "fetch_order_items", map[string]any{"issue_id": issueID})

	var payload struct {
		Items []OrderItem `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/order-issues/%s/order-items", url.PathEscape(issueID)), nil, "", &payload)
	if err != nil {
		c.log(ctx, "error", "fetch_order_items", map[string]any{"error": err.Error()})
		return nil, err
	}

	for _, item := range payload.Items {
		if vErr := item.Validate(); vErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, vErr, "platform returned malformed order item")
		}
	}

	c.log(ctx, "response", "fetch_order_items", map[string]any{"issue_id": issueID, "count": len(payload.Items)})
	return payload.Items, nil
}

// SubmitRefund posts a refund request. The idempotency key covers exactly one
// user confirmation; callers must mint a fresh key per attempt and never
// auto-retry without one.
func (c *Client) SubmitRefund(ctx context.Context, issueID string, req RefundRequest, idempotencyKey string) (*RefundResult, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		idempotencyKey = c.NewIdempotencyKey("refund")
	}
	c.log(ctx, "request", "submit_refund", map[string]any{
		"issue_id":  issueID,
		"full":      req.IsFull(),
		"num_items": len(req.Items),
	})

	var result RefundResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/order-issues/%s/refund", url.PathEscape(issueID)), req, idempotencyKey, &result)
	if err != nil {
		c.log(ctx, "error", "submit_refund", map[string]any{"error": err.Error()})
		return nil, err
	}
	if !result.Type.IsValid() {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("invalid refund type %q", result.Type), "platform returned malformed refund result")
	}

	c.log(ctx, "response", "submit_refund", map[string]any{
		"issue_id":    issueID,
		"refund_type": result.Type.String(),
		"amount":      result.Amount.String(),
	})
	return &result, nil
}

// Ping reports whether the platform is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/order-issues/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping platform: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode platform request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build platform request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapPlatformError(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode platform response")
	}
	return nil
}

func (c *Client) mapPlatformError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := fmt.Sprintf("platform returned %d", resp.StatusCode)
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error.Message != "" {
			message = payload.Error.Message
		} else if payload.Message != "" {
			message = payload.Message
		}
	}

	return pkgerrors.New(domainCodeForStatus(resp.StatusCode), message)
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return pkgerrors.CodeProcessor
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("platform %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("platform %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone", "notes"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
