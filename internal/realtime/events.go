package realtime

import "ged_backend/internal/models"

// Actions carried on the per-user notification stream. Clients switch on
// the action field and ignore unknown values.
const (
	ActionNewNotification = "new_notification"
	ActionMarkAsRead      = "mark_as_read"
	ActionMarkAllAsRead   = "mark_all_as_read"
	ActionUpdateCount     = "update_count"
)

// Event is the wire payload pushed to a user's live connections. Every
// event carries the authoritative unread count so clients can resync their
// badge without a follow-up request.
type Event struct {
	Action         string               `json:"action"`
	Notification   *models.Notification `json:"notification,omitempty"`
	NotificationID string               `json:"notification_id,omitempty"`
	UnreadCount    int64                `json:"unread_count"`
}

func NewNotificationEvent(n *models.Notification, unread int64) Event {
	return Event{Action: ActionNewNotification, Notification: n, UnreadCount: unread}
}

func MarkAsReadEvent(id string, unread int64) Event {
	return Event{Action: ActionMarkAsRead, NotificationID: id, UnreadCount: unread}
}

func MarkAllAsReadEvent() Event {
	return Event{Action: ActionMarkAllAsRead, UnreadCount: 0}
}

func UpdateCountEvent(unread int64) Event {
	return Event{Action: ActionUpdateCount, UnreadCount: unread}
}

// Publisher delivers an event to every live connection of one user.
// Publishes for the same user are serialized in call order.
type Publisher interface {
	Publish(userID string, event Event)
}

// NopPublisher drops every event. Used when no hub is wired in.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}
