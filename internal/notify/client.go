// Package notify delivers rendered messages to a Telegram chat, paces and
// retries the API calls, and journals everything that went out.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client wraps the Telegram Bot API methods the watcher needs.
type Client struct {
	token  string
	chatID string
	apiURL string
	client *http.Client
}

func NewClient(token, chatID string) *Client {
	return &Client{
		token:  token,
		chatID: chatID,
		apiURL: "https://api.telegram.org/bot" + token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage posts text to the configured chat. Messages are rendered
// with HTML entities, so the parse mode is always HTML.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	return c.post(ctx, "sendMessage", payload, nil)
}

// GetMe returns the bot's username, proving the token is valid.
func (c *Client) GetMe(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/getMe", nil)
	if err != nil {
		return "", fmt.Errorf("build getMe request: %w", err)
	}
	var result struct {
		Username string `json:"username"`
	}
	if err := c.do(req, "getMe", &result); err != nil {
		return "", err
	}
	return result.Username, nil
}

func (c *Client) post(ctx context.Context, method string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method, out)
}

func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		if api.Description != "" {
			return fmt.Errorf("telegram %s: %s", method, api.Description)
		}
		return fmt.Errorf("telegram %s: status %d", method, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
