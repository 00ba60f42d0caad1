package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ged_backend/internal/email"
	"ged_backend/internal/models"
	"ged_backend/internal/realtime"
	"ged_backend/internal/repositories"
	"ged_backend/internal/services"
	"ged_backend/internal/services/dto"
	"ged_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopMailer struct{}

func (nopMailer) Send(*email.Email) error { return nil }
func (nopMailer) SendWithTemplate(string, email.TemplateData, *email.Email) error {
	return nil
}
func (nopMailer) Validate() error { return nil }
func (nopMailer) Close() error    { return nil }

type handlerFixture struct {
	engine      *gin.Engine
	repo        repositories.NotificationRepository
	preferences services.PreferenceService
	userID      string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repositories.NewMemoryNotificationRepository()
	digests := repositories.NewMemoryDigestRepository()
	users := repositories.NewMemoryUserRepository()
	userID := users.Add(models.User{Email: "claire.moreau@example.fr"})

	preferences := services.NewPreferenceService(repositories.NewMemoryPreferenceRepository())
	notificationService := services.NewNotificationService(repo, realtime.NopPublisher{})
	deliveryService := services.NewDeliveryService(
		preferences, repo, digests, users, realtime.NopPublisher{}, nopMailer{}, "https://ged.example.fr")

	base := NewBaseHandler(validator.New())
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", "user")
	})
	api := engine.Group("/api/v1")
	NewNotificationHandler(base, notificationService, deliveryService).RegisterRoutes(api)
	NewPreferenceHandler(base, preferences).RegisterRoutes(api)

	return &handlerFixture{
		engine:      engine,
		repo:        repo,
		preferences: preferences,
		userID:      userID,
	}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	f.engine.ServeHTTP(recorder, req)
	return recorder
}

func (f *handlerFixture) seed(t *testing.T, typeKey string) *models.Notification {
	t.Helper()
	n := &models.Notification{
		UserID:           f.userID,
		NotificationType: typeKey,
		Title:            "titre",
	}
	require.NoError(t, f.repo.Create(n))
	return n
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func TestNotificationHandler_Create(t *testing.T) {
	f := newHandlerFixture(t)

	recorder := f.do(t, http.MethodPost, "/api/v1/notifications", dto.CreateNotificationRequest{
		UserID:  f.userID,
		Type:    models.TypeDocumentShared,
		Title:   "Document partagé",
		Message: "Un document a été partagé avec vous.",
		Path:    "/documents/42",
	})

	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var created models.Notification
	decodeJSON(t, recorder, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.TypeDocumentShared, created.NotificationType)

	unread, err := f.repo.UnreadCount(f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestNotificationHandler_CreateSuppressedReturnsNoContent(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.preferences.Set(f.userID, models.TypeDocumentShared, models.DeliveryDisabled, models.FrequencyDisabled))

	recorder := f.do(t, http.MethodPost, "/api/v1/notifications", dto.CreateNotificationRequest{
		UserID: f.userID,
		Type:   models.TypeDocumentShared,
		Title:  "Document partagé",
	})

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestNotificationHandler_CreateRejectsUnknownType(t *testing.T) {
	f := newHandlerFixture(t)

	recorder := f.do(t, http.MethodPost, "/api/v1/notifications", dto.CreateNotificationRequest{
		UserID: f.userID,
		Type:   "telegramme",
		Title:  "??",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestNotificationHandler_ListAndUnreadCount(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, models.TypeDocumentShared)
	f.seed(t, models.TypeBudgetExceeded)

	recorder := f.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var list dto.NotificationListResponse
	decodeJSON(t, recorder, &list)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, int64(2), list.UnreadCount)
	assert.Len(t, list.Notifications, 2)

	recorder = f.do(t, http.MethodGet, "/api/v1/notifications?category=budgets", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeJSON(t, recorder, &list)
	assert.Equal(t, int64(1), list.Total)

	recorder = f.do(t, http.MethodGet, "/api/v1/notifications/unread_count", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var count dto.UnreadCountResponse
	decodeJSON(t, recorder, &count)
	assert.Equal(t, int64(2), count.UnreadCount)
}

func TestNotificationHandler_MarkAsRead(t *testing.T) {
	f := newHandlerFixture(t)
	n := f.seed(t, models.TypeDocumentShared)

	recorder := f.do(t, http.MethodPatch, "/api/v1/notifications/"+n.ID+"/mark_as_read", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Notification marquée comme lue")

	recorder = f.do(t, http.MethodPatch, "/api/v1/notifications/inconnue/mark_as_read", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestNotificationHandler_MarkAllAsRead(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, models.TypeDocumentShared)
	f.seed(t, models.TypeProjectCreated)

	recorder := f.do(t, http.MethodPatch, "/api/v1/notifications/mark_all_as_read", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var result map[string]int64
	decodeJSON(t, recorder, &result)
	assert.Equal(t, int64(2), result["count"])
}

func TestNotificationHandler_BulkMarkAsRead(t *testing.T) {
	f := newHandlerFixture(t)
	a := f.seed(t, models.TypeDocumentShared)
	b := f.seed(t, models.TypeProjectCreated)

	recorder := f.do(t, http.MethodPatch, "/api/v1/notifications/bulk_mark_as_read",
		dto.BulkIDsRequest{NotificationIDs: []string{a.ID, b.ID, a.ID}})
	require.Equal(t, http.StatusOK, recorder.Code)
	var result dto.BulkResultResponse
	decodeJSON(t, recorder, &result)
	assert.Equal(t, int64(2), result.Count)
	assert.Equal(t, int64(0), result.UnreadCount)

	recorder = f.do(t, http.MethodPatch, "/api/v1/notifications/bulk_mark_as_read",
		dto.BulkIDsRequest{NotificationIDs: []string{}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code, "empty id list is rejected")
}

func TestNotificationHandler_DestroyAndBulkDestroy(t *testing.T) {
	f := newHandlerFixture(t)
	a := f.seed(t, models.TypeDocumentShared)
	b := f.seed(t, models.TypeProjectCreated)
	c := f.seed(t, models.TypeBudgetAlert)

	recorder := f.do(t, http.MethodDelete, "/api/v1/notifications/"+a.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Notification supprimée")

	recorder = f.do(t, http.MethodDelete, "/api/v1/notifications/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code, "double delete answers not found")

	recorder = f.do(t, http.MethodDelete, "/api/v1/notifications/bulk_destroy",
		dto.BulkIDsRequest{NotificationIDs: []string{b.ID, c.ID}})
	require.Equal(t, http.StatusOK, recorder.Code)
	var result dto.BulkResultResponse
	decodeJSON(t, recorder, &result)
	assert.Equal(t, int64(2), result.Count)
}

func TestNotificationHandler_Stats(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, models.TypeProjectCreated)
	f.seed(t, models.TypeProjectTaskOverdue)
	f.seed(t, models.TypeDocumentShared)

	recorder := f.do(t, http.MethodGet, "/api/v1/notifications/stats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var stats dto.NotificationStatsResponse
	decodeJSON(t, recorder, &stats)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByCategory[models.CategoryProjects])
}

func TestNotificationHandler_RequiresAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	// Same routes, no auth middleware injecting the user.
	engine := gin.New()
	api := engine.Group("/api/v1")
	base := NewBaseHandler(validator.New())
	notificationService := services.NewNotificationService(f.repo, realtime.NopPublisher{})
	NewNotificationHandler(base, notificationService, nil).RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", strings.NewReader(""))
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestNotificationHandler_GetScopedToOwner(t *testing.T) {
	f := newHandlerFixture(t)
	foreign := &models.Notification{
		UserID:           "someone-else",
		NotificationType: models.TypeDocumentShared,
		Title:            "titre",
	}
	require.NoError(t, f.repo.Create(foreign))

	recorder := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/notifications/%s", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
