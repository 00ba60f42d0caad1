package repositories

import (
	"time"

	"ged_backend/internal/models"

	"gorm.io/gorm"
)

// DigestWindow identifies one pending (user, window) accumulator.
type DigestWindow struct {
	UserID      string
	WindowStart time.Time
}

// DigestRepository accumulates email-channel events whose frequency defers
// them to a daily or weekly digest. The worker drains whole windows.
type DigestRepository interface {
	Append(entry *models.DigestEntry) error
	// PendingWindows returns the distinct (user, window) pairs for the given
	// frequency whose window started before the cutoff.
	PendingWindows(frequency models.Frequency, before time.Time) ([]DigestWindow, error)
	Entries(userID string, windowStart time.Time, frequency models.Frequency) ([]models.DigestEntry, error)
	Purge(userID string, windowStart time.Time, frequency models.Frequency) error
}

type digestRepository struct {
	db *gorm.DB
}

func NewDigestRepository(db *gorm.DB) DigestRepository {
	return &digestRepository{db: db}
}

func (r *digestRepository) Append(entry *models.DigestEntry) error {
	return r.db.Create(entry).Error
}

func (r *digestRepository) PendingWindows(frequency models.Frequency, before time.Time) ([]DigestWindow, error) {
	var windows []DigestWindow
	err := r.db.Model(&models.DigestEntry{}).
		Where("frequency = ? AND window_start < ?", frequency, before).
		Select("DISTINCT user_id, window_start").
		Scan(&windows).Error
	return windows, err
}

func (r *digestRepository) Entries(userID string, windowStart time.Time, frequency models.Frequency) ([]models.DigestEntry, error) {
	var entries []models.DigestEntry
	err := r.db.Where("user_id = ? AND window_start = ? AND frequency = ?", userID, windowStart, frequency).
		Order("created_at").
		Find(&entries).Error
	return entries, err
}

func (r *digestRepository) Purge(userID string, windowStart time.Time, frequency models.Frequency) error {
	return r.db.Where("user_id = ? AND window_start = ? AND frequency = ?", userID, windowStart, frequency).
		Delete(&models.DigestEntry{}).Error
}
