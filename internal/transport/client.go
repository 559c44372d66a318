// Package transport implements the HTTP wire against the remote chat
// service: form-encoded token exchange plus bearer-authenticated JSON
// endpoints.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"free-chat-client/internal/domain"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a bearer token via POST /token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", domain.NewTransportError("login", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domain.NewTransportError("login", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s",
			domain.ErrInvalidCredentials, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", domain.NewTransportError("login: decode response", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", domain.ErrInvalidCredentials)
	}
	return result.AccessToken, nil
}

// Me fetches the identity bound to the token via GET /users/me.
func (c *Client) Me(ctx context.Context, token string) (*domain.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users/me", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "me"); err != nil {
		return nil, err
	}

	var identity domain.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, domain.NewTransportError("me: decode response", err)
	}
	return &identity, nil
}

// Messages fetches the conversation via GET /messages/. Every returned entry
// is server truth and therefore confirmed.
func (c *Client) Messages(ctx context.Context, token string) ([]domain.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/messages/", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "messages"); err != nil {
		return nil, err
	}

	var messages []domain.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, domain.NewTransportError("messages: decode response", err)
	}
	for i := range messages {
		messages[i].Status = domain.StatusConfirmed
	}
	return messages, nil
}

// PostMessage submits a message via POST /messages/.
func (c *Client) PostMessage(ctx context.Context, token, sender, content string) (*domain.Message, error) {
	payload, err := json.Marshal(map[string]string{
		"content": content,
		"sender":  sender,
	})
	if err != nil {
		return nil, domain.NewTransportError("post message: encode request", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/messages/", token, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "post message"); err != nil {
		return nil, err
	}

	var created domain.Message
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, domain.NewTransportError("post message: decode response", err)
	}
	created.Status = domain.StatusConfirmed
	return &created, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, domain.NewTransportError(path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and connection failures are transient.
		return nil, domain.NewTransportError(path, err)
	}
	return resp, nil
}

// checkStatus maps the response status to the error taxonomy: 401/403 reject
// the session, any other non-2xx is transient. Consumes the body on error.
func (c *Client) checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s: status %d", domain.ErrTokenRejected, op, resp.StatusCode)
	}
	return domain.NewTransportError(op,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
}
