package services

import (
	"encoding/json"

	"ged_backend/internal/models"
	"ged_backend/internal/realtime"
	"ged_backend/internal/repositories"
	"ged_backend/internal/services/dto"
	"ged_backend/pkg/apperrors"
)

// NotificationService owns read/unread/deleted state. Every mutation that
// changes the unread count also fans the change out to the user's live
// connections, and every returned count reflects actual transitions.
type NotificationService interface {
	List(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	Get(userID, notificationID string) (*dto.NotificationResponse, error)
	UnreadCount(userID string) (int64, error)
	Stats(userID string) (*dto.NotificationStatsResponse, error)

	MarkRead(userID, notificationID string) error
	MarkAllRead(userID string) (int64, error)
	BulkMarkRead(userID string, notificationIDs []string) (*dto.BulkResultResponse, error)
	Delete(userID, notificationID string) error
	BulkDelete(userID string, notificationIDs []string) (*dto.BulkResultResponse, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	publisher        realtime.Publisher
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, publisher realtime.Publisher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

func (s *notificationService) List(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindForUser(userID, criteria)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, buildNotificationResponse(&notifications[i]))
	}

	page, pageSize := criteria.Page, criteria.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return &dto.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    calculateTotalPages(total, pageSize),
	}, nil
}

func (s *notificationService) Get(userID, notificationID string) (*dto.NotificationResponse, error) {
	notification, err := s.notificationRepo.FindByID(userID, notificationID)
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return nil, apperrors.NewNotFoundError("notifications", "Notification introuvable")
		}
		return nil, err
	}
	return buildNotificationResponse(notification), nil
}

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	return s.notificationRepo.UnreadCount(userID)
}

func (s *notificationService) Stats(userID string) (*dto.NotificationStatsResponse, error) {
	byCategory, err := s.notificationRepo.CountsByCategory(userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, count := range byCategory {
		total += count
	}
	return &dto.NotificationStatsResponse{
		Total:       total,
		UnreadCount: unread,
		ByCategory:  byCategory,
	}, nil
}

// MarkRead is idempotent: only the unread→read transition publishes an
// event, a repeat call changes nothing and stays silent.
func (s *notificationService) MarkRead(userID, notificationID string) error {
	transitioned, err := s.notificationRepo.MarkAsRead(userID, notificationID)
	if err != nil {
		return err
	}
	if !transitioned {
		// Either already read or not this user's notification.
		if _, err := s.notificationRepo.FindByID(userID, notificationID); err != nil {
			return apperrors.NewNotFoundError("notifications", "Notification introuvable")
		}
		return nil
	}

	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return err
	}
	s.publisher.Publish(userID, realtime.MarkAsReadEvent(notificationID, unread))
	return nil
}

// MarkAllRead always publishes, even when nothing was unread, so every open
// tab converges on the zeroed badge.
func (s *notificationService) MarkAllRead(userID string) (int64, error) {
	affected, err := s.notificationRepo.MarkAllAsRead(userID)
	if err != nil {
		return 0, err
	}
	s.publisher.Publish(userID, realtime.MarkAllAsReadEvent())
	return affected, nil
}

func (s *notificationService) BulkMarkRead(userID string, notificationIDs []string) (*dto.BulkResultResponse, error) {
	affected, err := s.notificationRepo.MarkManyAsRead(userID, notificationIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		s.publisher.Publish(userID, realtime.UpdateCountEvent(unread))
	}
	return &dto.BulkResultResponse{Count: affected, UnreadCount: unread}, nil
}

func (s *notificationService) Delete(userID, notificationID string) error {
	deleted, wasUnread, err := s.notificationRepo.Delete(userID, notificationID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("notifications", "Notification introuvable")
	}
	if wasUnread {
		unread, err := s.notificationRepo.UnreadCount(userID)
		if err != nil {
			return err
		}
		s.publisher.Publish(userID, realtime.UpdateCountEvent(unread))
	}
	return nil
}

func (s *notificationService) BulkDelete(userID string, notificationIDs []string) (*dto.BulkResultResponse, error) {
	deleted, wasUnread, err := s.notificationRepo.DeleteMany(userID, notificationIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}
	if wasUnread > 0 {
		s.publisher.Publish(userID, realtime.UpdateCountEvent(unread))
	}
	return &dto.BulkResultResponse{Count: deleted, UnreadCount: unread}, nil
}

func buildNotificationResponse(notification *models.Notification) *dto.NotificationResponse {
	response := &dto.NotificationResponse{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Type:      notification.NotificationType,
		Category:  notification.Category(),
		Priority:  notification.Priority,
		Title:     notification.Title,
		Message:   notification.Message,
		Path:      notification.Path,
		IsRead:    notification.Read(),
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}

	if len(notification.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(notification.Data, &data); err == nil {
			response.Data = data
		}
	}

	return response
}

func calculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
