package models

import "time"

// DigestEntry is one accumulated email-channel event waiting for its
// daily/weekly window to be drained. One row per approved event; duplicates
// within a window are kept and concatenated at drain time.
type DigestEntry struct {
	BaseModel
	UserID           string    `gorm:"not null;index:idx_digest_window" json:"user_id"`
	WindowStart      time.Time `gorm:"not null;index:idx_digest_window" json:"window_start"`
	Frequency        Frequency `gorm:"not null" json:"frequency"`
	NotificationType string    `gorm:"not null" json:"notification_type"`
	Title            string    `gorm:"not null" json:"title"`
	Message          string    `json:"message"`
	Path             string    `json:"path"`
}
