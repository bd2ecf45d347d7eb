package bulkmedya

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultURL = "https://bulkmedya.org/api/v2"

// Client talks to the BulkMedya reseller panel. Every call is a single
// form-encoded POST with a fixed timeout; nothing is retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// OrderStatus is the panel's view of one order
type OrderStatus struct {
	Status   string          `json:"status"`
	Charge   decimal.Decimal `json:"charge"`
	Remains  string          `json:"remains,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Normalized returns the lower-cased status
func (s OrderStatus) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Status))
}

// APIError is a business error reported by the panel
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("bulkmedya API error: %d - %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bulkmedya API error: %s", e.Message)
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

func (c *Client) post(ctx context.Context, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call panel: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var probe struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Error != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: probe.Error}
	}
	return body, nil
}

func ordersParam(form url.Values, orderIDs []string) {
	if len(orderIDs) == 1 {
		form.Set("order", orderIDs[0])
		return
	}
	form.Set("orders", strings.Join(orderIDs, ","))
}

// AddOrder creates an order and returns the panel's order id
func (c *Client) AddOrder(ctx context.Context, apiKey string, serviceID int, link string, quantity int) (string, error) {
	form := url.Values{}
	form.Set("key", apiKey)
	form.Set("action", "add")
	form.Set("service", strconv.Itoa(serviceID))
	form.Set("link", link)
	form.Set("quantity", strconv.Itoa(quantity))

	body, err := c.post(ctx, form)
	if err != nil {
		return "", err
	}

	var result struct {
		Order json.Number `json:"order"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Order == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "response has no order id"}
	}
	return result.Order.String(), nil
}

// Status fetches the status of one or more orders, keyed by order id
func (c *Client) Status(ctx context.Context, apiKey string, orderIDs []string) (map[string]OrderStatus, error) {
	if len(orderIDs) == 0 {
		return map[string]OrderStatus{}, nil
	}

	form := url.Values{}
	form.Set("key", apiKey)
	form.Set("action", "status")
	ordersParam(form, orderIDs)

	body, err := c.post(ctx, form)
	if err != nil {
		return nil, err
	}

	if len(orderIDs) == 1 {
		var st OrderStatus
		if err := json.Unmarshal(body, &st); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return map[string]OrderStatus{orderIDs[0]: st}, nil
	}

	var raw map[string]OrderStatus
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return raw, nil
}

// Refill requests refills and reports which order ids the panel accepted
func (c *Client) Refill(ctx context.Context, apiKey string, orderIDs []string) (map[string]bool, error) {
	if len(orderIDs) == 0 {
		return map[string]bool{}, nil
	}

	form := url.Values{}
	form.Set("key", apiKey)
	form.Set("action", "refill")
	ordersParam(form, orderIDs)

	body, err := c.post(ctx, form)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(orderIDs))
	if len(orderIDs) == 1 {
		var single struct {
			Refill json.RawMessage `json:"refill"`
		}
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		out[orderIDs[0]] = accepted(single.Refill)
		return out, nil
	}

	var list []struct {
		Order  json.Number     `json:"order"`
		Refill json.RawMessage `json:"refill"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for _, r := range list {
		out[r.Order.String()] = accepted(r.Refill)
	}
	return out, nil
}

// accepted interprets a refill field: a non-zero id means the refill was queued
func accepted(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != "" && n != "0"
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != "" && s != "0"
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		_, failed := obj["error"]
		return !failed && len(obj) > 0
	}
	return false
}
