package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"ged_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

func newTransportFixture(t *testing.T, status int, response string) (*HTTPTransport, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return NewHTTPTransport(server.URL, "jwt-token", "csrf-token"), &captured
}

func TestHTTPTransport_HeadersOnEveryRequest(t *testing.T) {
	transport, captured := newTransportFixture(t, http.StatusOK, `{"count":0}`)

	require.NoError(t, transport.MarkAsRead(context.Background(), "n1"))

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/v1/notifications/n1/mark_as_read", req.Path)
	assert.Equal(t, "Bearer jwt-token", req.Header.Get("Authorization"))
	assert.Equal(t, "csrf-token", req.Header.Get("X-CSRF-Token"))

	cookie, err := (&http.Request{Header: req.Header}).Cookie("csrf_token")
	require.NoError(t, err)
	assert.Equal(t, "csrf-token", cookie.Value, "double-submit needs the cookie too")
}

func TestHTTPTransport_PassesCSRFMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.CSRFMiddleware())
	engine.PATCH("/api/v1/notifications/:id/mark_as_read", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	engine.DELETE("/api/v1/notifications/bulk_destroy", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": 1})
	})
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	transport := NewHTTPTransport(server.URL, "jwt-token", "csrf-token")
	require.NoError(t, transport.MarkAsRead(context.Background(), "n1"))

	count, err := transport.BulkDelete(context.Background(), []string{"n1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHTTPTransport_BulkMarkAsRead(t *testing.T) {
	transport, captured := newTransportFixture(t, http.StatusOK, `{"count":2,"unread_count":1}`)

	count, err := transport.BulkMarkAsRead(context.Background(), []string{"n1", "n2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/v1/notifications/bulk_mark_as_read", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var payload map[string][]string
	require.NoError(t, json.Unmarshal([]byte(req.Body), &payload))
	assert.Equal(t, []string{"n1", "n2"}, payload["notification_ids"])
}

func TestHTTPTransport_BulkDelete(t *testing.T) {
	transport, captured := newTransportFixture(t, http.StatusOK, `{"count":2}`)

	count, err := transport.BulkDelete(context.Background(), []string{"n1", "n2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, http.MethodDelete, (*captured)[0].Method)
	assert.Equal(t, "/api/v1/notifications/bulk_destroy", (*captured)[0].Path)
}

func TestHTTPTransport_UpdatePreferencesFormEncoded(t *testing.T) {
	transport, captured := newTransportFixture(t, http.StatusOK, `{}`)

	form := url.Values{}
	form.Set("preferences[document_shared][delivery_method]", "email")
	form.Set("preferences[document_shared][frequency]", "daily_digest")
	require.NoError(t, transport.UpdatePreferences(context.Background(), form))

	req := (*captured)[0]
	assert.Equal(t, "/api/v1/notification_preferences/bulk_update", req.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	parsed, err := url.ParseQuery(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "email", parsed.Get("preferences[document_shared][delivery_method]"))
}

func TestHTTPTransport_Preview(t *testing.T) {
	transport, captured := newTransportFixture(t, http.StatusOK, `<div class="notification-preview"></div>`)

	html, err := transport.Preview(context.Background(), "document_shared")
	require.NoError(t, err)
	assert.Contains(t, html, "notification-preview")
	assert.Equal(t, "document_shared", (*captured)[0].Query.Get("notification_type"))
}

func TestHTTPTransport_ErrorStatus(t *testing.T) {
	transport, _ := newTransportFixture(t, http.StatusForbidden, `{"error":"csrf"}`)

	err := transport.MarkAsRead(context.Background(), "n1")
	assert.Error(t, err)

	_, err = transport.BulkDelete(context.Background(), []string{"n1"})
	assert.Error(t, err)
}
