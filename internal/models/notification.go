package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is one delivered in-app notification instance. Read state
// flips false→true exactly once; deletion is a soft delete and terminal.
type Notification struct {
	BaseModel
	UserID           string         `gorm:"not null;index" json:"user_id"`
	NotificationType string         `gorm:"not null" json:"notification_type"`
	Title            string         `gorm:"not null" json:"title"`
	Message          string         `json:"message"`
	Path             string         `json:"path"`
	Priority         Urgency        `gorm:"not null;default:normal" json:"priority"`
	Data             datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	ReadAt           *time.Time     `json:"read_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

func (n *Notification) Type() (NotificationType, bool) {
	return NotificationTypeByKey(n.NotificationType)
}

func (n *Notification) Category() Category {
	if t, ok := n.Type(); ok {
		return t.Category
	}
	return CategorySystem
}

func (n *Notification) Urgent() bool {
	return n.Priority == UrgencyUrgent
}
