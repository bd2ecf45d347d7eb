package vaultcord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const DefaultURL = "https://api.vaultcord.com"

// Client registers servers and starts member pulls on VaultCord
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// APIError is an unsuccessful VaultCord response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vaultcord API error: %d - %s", e.StatusCode, e.Message)
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (c *Client) put(ctx context.Context, path string, payload any) (int, *apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to call vaultcord: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		result.Message = string(raw)
	}
	if result.Message == "" && !result.Success {
		result.Message = string(raw)
	}
	return resp.StatusCode, &result, nil
}

// RegisterServer registers a guild with the pull bot. An already registered
// guild (409) counts as success.
func (c *Client) RegisterServer(ctx context.Context, name, botID, serverID string) error {
	bot, err := strconv.ParseInt(botID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pull bot id %q: %w", botID, err)
	}

	status, resp, err := c.put(ctx, "/servers", map[string]any{
		"name":     name,
		"botId":    bot,
		"serverId": serverID,
	})
	if err != nil {
		return err
	}
	if status == http.StatusConflict {
		return nil
	}
	if status < 200 || status >= 300 || !resp.Success {
		return &APIError{StatusCode: status, Message: resp.Message}
	}
	return nil
}

// PullMembers starts pulling up to limit members into serverID
func (c *Client) PullMembers(ctx context.Context, serverID string, limit int) error {
	status, resp, err := c.put(ctx, "/members/pull/"+serverID, map[string]any{
		"guildid": serverID,
		"limit":   limit,
	})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 || !resp.Success {
		return &APIError{StatusCode: status, Message: resp.Message}
	}
	return nil
}
