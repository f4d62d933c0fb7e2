package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/utils"
)

// ErrUnauthorized means the API rejected the bearer token (or the login).
var ErrUnauthorized = errors.New("billing: unauthorized")

// APIError is a response whose envelope status is not 200.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billing: status %d", e.Status)
	}
	return fmt.Sprintf("billing: status %d: %s", e.Status, e.Message)
}

// Client is an HTTP client for the school billing API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a billing API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, in LoginRequest) (Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "auth/login", "", nil, in, &out); err != nil {
		return Session{}, err
	}
	if out.Token == "" {
		return Session{}, &APIError{Status: http.StatusBadGateway, Message: "login response without token"}
	}
	return out, nil
}

// Me returns the account that owns token.
func (c *Client) Me(ctx context.Context, token string) (Account, error) {
	var out Account
	err := c.do(ctx, http.MethodGet, "auth/me", token, nil, nil, &out)
	return out, err
}

// History returns one page of the caller's invoices.
func (c *Client) History(ctx context.Context, token string, q HistoryQuery) (HistoryPage, error) {
	var out HistoryPage
	err := c.do(ctx, http.MethodGet, "history-transaction", token, q.Values(), nil, &out)
	return out, err
}

// InvoiceDetail returns one invoice with its line items.
func (c *Client) InvoiceDetail(ctx context.Context, token, invoiceNo string) (InvoiceDetail, error) {
	var out InvoiceDetail
	body := map[string]string{"no_faktur": invoiceNo}
	err := c.do(ctx, http.MethodPost, "history-transaction", token, nil, body, &out)
	return out, err
}

// Instructions returns the virtual account payment instructions per channel.
func (c *Client) Instructions(ctx context.Context, token string) ([]InstructionMethod, error) {
	var out struct {
		Instructions []InstructionMethod `json:"instructions"`
	}
	if err := c.do(ctx, http.MethodGet, "instruction-payment", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Instructions, nil
}

// DetailByKey resolves a public payment link. No token is sent.
func (c *Client) DetailByKey(ctx context.Context, key string) (KeyedInvoice, error) {
	var out KeyedInvoice
	body := map[string]string{"key": key}
	err := c.do(ctx, http.MethodPost, "transaction/detail-by-key", "", nil, body, &out)
	return out, err
}

// do sends one request and unwraps the response envelope into out.
func (c *Client) do(ctx context.Context, method, endpoint, token string, query url.Values, body, out any) error {
	fullURL := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id, ok := utils.GetRequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	c.logger.Debug("billing request", zap.String("method", method), zap.String("endpoint", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe(endpoint, "error", start)
		c.logger.Warn("billing request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("billing %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	observe(endpoint, strconv.Itoa(resp.StatusCode), start)
	c.logger.Debug("billing response",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}

	switch {
	case env.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case env.Status != http.StatusOK:
		c.logger.Info("billing api rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("status", env.Status),
			zap.String("message", env.Message),
		)
		return &APIError{Status: env.Status, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	return nil
}

// MessageOf returns the API's own message for err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
