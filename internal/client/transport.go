package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Transport performs the agent's calls against the notification API.
type Transport interface {
	MarkAsRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) (int64, error)
	BulkMarkAsRead(ctx context.Context, ids []string) (int64, error)
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	UpdatePreferences(ctx context.Context, form url.Values) error
	Preview(ctx context.Context, notificationType string) (string, error)
}

// HTTPTransport talks to the server API. Every request carries the bearer
// token plus the client-generated CSRF token as both the X-CSRF-Token header
// and the csrf_token cookie, matching the server's double-submit check.
type HTTPTransport struct {
	BaseURL   string
	AuthToken string
	CSRFToken string
	Client    *http.Client
}

func NewHTTPTransport(baseURL, authToken, csrfToken string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		AuthToken: authToken,
		CSRFToken: csrfToken,
		Client:    http.DefaultClient,
	}
}

type countPayload struct {
	Count int64 `json:"count"`
}

func (t *HTTPTransport) MarkAsRead(ctx context.Context, id string) error {
	return t.call(ctx, http.MethodPatch, "/api/v1/notifications/"+id+"/mark_as_read", nil, nil)
}

func (t *HTTPTransport) Delete(ctx context.Context, id string) error {
	return t.call(ctx, http.MethodDelete, "/api/v1/notifications/"+id, nil, nil)
}

func (t *HTTPTransport) MarkAllAsRead(ctx context.Context) (int64, error) {
	var payload countPayload
	err := t.call(ctx, http.MethodPatch, "/api/v1/notifications/mark_all_as_read", nil, &payload)
	return payload.Count, err
}

func (t *HTTPTransport) BulkMarkAsRead(ctx context.Context, ids []string) (int64, error) {
	var payload countPayload
	err := t.callJSON(ctx, http.MethodPatch, "/api/v1/notifications/bulk_mark_as_read", ids, &payload)
	return payload.Count, err
}

func (t *HTTPTransport) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	var payload countPayload
	err := t.callJSON(ctx, http.MethodDelete, "/api/v1/notifications/bulk_destroy", ids, &payload)
	return payload.Count, err
}

func (t *HTTPTransport) UpdatePreferences(ctx context.Context, form url.Values) error {
	req, err := t.newRequest(ctx, http.MethodPatch, "/api/v1/notification_preferences/bulk_update", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.do(req, nil)
}

func (t *HTTPTransport) Preview(ctx context.Context, notificationType string) (string, error) {
	path := "/api/v1/notification_preferences/preview?notification_type=" + url.QueryEscape(notificationType)
	req, err := t.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("preview request failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (t *HTTPTransport) callJSON(ctx context.Context, method, path string, ids []string, out interface{}) error {
	body, err := json.Marshal(map[string][]string{"notification_ids": ids})
	if err != nil {
		return err
	}
	req, err := t.newRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *HTTPTransport) call(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := t.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return t.do(req, out)
}

func (t *HTTPTransport) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if t.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.AuthToken)
	}
	// Double-submit: the server compares the header against the cookie, so
	// both must carry the same token.
	req.Header.Set("X-CSRF-Token", t.CSRFToken)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: t.CSRFToken})
	return req, nil
}

func (t *HTTPTransport) do(req *http.Request, out interface{}) error {
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s %s failed with status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
