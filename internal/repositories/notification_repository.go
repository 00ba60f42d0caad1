package repositories

import (
	"errors"
	"time"

	"ged_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationCriteria filters the notification list.
type NotificationCriteria struct {
	Category   models.Category `form:"category"`
	UnreadOnly bool            `form:"unread_only"`
	Page       int             `form:"page" binding:"min=0"`
	PageSize   int             `form:"page_size" binding:"min=0,max=100"`
}

// NotificationRepository owns the authoritative read/unread/deleted state.
// Every mutation is a guarded transition: the returned counts reflect rows
// whose state actually changed, never the size of the input, so overlapping
// concurrent bulk calls cannot double-count.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(userID, id string) (*models.Notification, error)
	FindForUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)

	// MarkAsRead reports whether the notification transitioned unread→read.
	MarkAsRead(userID, id string) (bool, error)
	// MarkAllAsRead returns the number of notifications that transitioned.
	MarkAllAsRead(userID string) (int64, error)
	// MarkManyAsRead returns the number of ids that were actually unread.
	MarkManyAsRead(userID string, ids []string) (int64, error)

	// Delete reports whether the row was removed and whether it was unread
	// at removal time (an unread delete is also an implicit read).
	Delete(userID, id string) (deleted bool, wasUnread bool, err error)
	DeleteMany(userID string, ids []string) (deleted int64, wasUnread int64, err error)

	UnreadCount(userID string) (int64, error)
	CountsByCategory(userID string) (map[models.Category]int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	if notification.UserID == "" {
		return errors.New("user ID is required")
	}
	if !models.IsValidNotificationType(notification.NotificationType) {
		return errors.New("invalid notification type: " + notification.NotificationType)
	}
	if notification.Title == "" {
		return errors.New("notification title is required")
	}
	return r.db.Create(notification).Error
}

func (r *notificationRepository) FindByID(userID, id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindForUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if criteria.Category != "" {
		keys := typeKeysForCategory(criteria.Category)
		query = query.Where("notification_type IN ?", keys)
	}
	if criteria.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePagination(criteria.Page, criteria.PageSize)
	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&notifications).Error

	return notifications, total, err
}

// MarkAsRead is a compare-and-set: the read_at IS NULL guard makes repeat
// calls no-ops and keeps unread-count deltas correct under races.
func (r *notificationRepository) MarkAsRead(userID, id string) (bool, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now())
	return result.RowsAffected > 0, result.Error
}

func (r *notificationRepository) MarkAllAsRead(userID string) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkManyAsRead(userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Notification{}).
		Where("id IN ? AND user_id = ? AND read_at IS NULL", ids, userID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(userID, id string) (bool, bool, error) {
	deleted, wasUnread, err := r.DeleteMany(userID, []string{id})
	return deleted > 0, wasUnread > 0, err
}

func (r *notificationRepository) DeleteMany(userID string, ids []string) (int64, int64, error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}

	var deleted, wasUnread int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Count the unread rows before removal: deleting an unread item is
		// simultaneously a deletion and an implicit read.
		if err := tx.Model(&models.Notification{}).
			Where("id IN ? AND user_id = ? AND read_at IS NULL", ids, userID).
			Count(&wasUnread).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ? AND user_id = ?", ids, userID).
			Delete(&models.Notification{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, wasUnread, err
}

func (r *notificationRepository) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) CountsByCategory(userID string) (map[models.Category]int64, error) {
	var rows []struct {
		NotificationType string
		Count            int64
	}
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Select("notification_type, COUNT(*) as count").
		Group("notification_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Category]int64)
	for _, row := range rows {
		if t, ok := models.NotificationTypeByKey(row.NotificationType); ok {
			counts[t.Category] += row.Count
		}
	}
	return counts, nil
}

func typeKeysForCategory(category models.Category) []string {
	types := models.NotificationTypesByCategory(category)
	keys := make([]string, 0, len(types))
	for _, t := range types {
		keys = append(keys, t.Key)
	}
	return keys
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
