package dto

import (
	"time"

	"ged_backend/internal/models"
)

// ---------------- Requests ----------------

type CreateNotificationRequest struct {
	UserID  string                 `json:"user_id" validate:"required"`
	Type    string                 `json:"type" validate:"required,is-notification-type"`
	Title   string                 `json:"title" validate:"required,max=200"`
	Message string                 `json:"message" validate:"omitempty,max=2000"`
	Path    string                 `json:"path" validate:"omitempty,max=500"`
	Data    map[string]interface{} `json:"data"`
}

type BulkIDsRequest struct {
	NotificationIDs []string `json:"notification_ids" validate:"required,min=1,dive,required"`
}

// ---------------- Responses ----------------

type NotificationResponse struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Category  models.Category        `json:"category"`
	Priority  models.Urgency         `json:"priority"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Path      string                 `json:"path,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Total         int64                   `json:"total"`
	UnreadCount   int64                   `json:"unread_count"`
	Page          int                     `json:"page"`
	PageSize      int                     `json:"page_size"`
	TotalPages    int                     `json:"total_pages"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// BulkResultResponse reports how many notifications actually changed state,
// not how many ids were submitted.
type BulkResultResponse struct {
	Count       int64 `json:"count"`
	UnreadCount int64 `json:"unread_count"`
}

type NotificationStatsResponse struct {
	Total       int64                     `json:"total"`
	UnreadCount int64                     `json:"unread_count"`
	ByCategory  map[models.Category]int64 `json:"by_category"`
}
