package repositories

import (
	"errors"

	"ged_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPreferenceNotFound = errors.New("notification preference not found")

// PreferenceRepository stores explicit per-user, per-type preference rows.
// Absence of a row is meaningful: the matrix falls back to the system
// default, so rows are only written on explicit preference updates.
type PreferenceRepository interface {
	Find(userID, typeKey string) (*models.UserNotificationPreference, error)
	ListForUser(userID string) ([]models.UserNotificationPreference, error)
	Upsert(pref *models.UserNotificationPreference) error
	UpsertMany(prefs []*models.UserNotificationPreference) error
	DeleteForUser(userID string) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Find(userID, typeKey string) (*models.UserNotificationPreference, error) {
	var pref models.UserNotificationPreference
	err := r.db.First(&pref, "user_id = ? AND notification_type = ?", userID, typeKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepository) ListForUser(userID string) ([]models.UserNotificationPreference, error) {
	var prefs []models.UserNotificationPreference
	err := r.db.Where("user_id = ?", userID).
		Order("notification_type").
		Find(&prefs).Error
	return prefs, err
}

func (r *preferenceRepository) Upsert(pref *models.UserNotificationPreference) error {
	return r.UpsertMany([]*models.UserNotificationPreference{pref})
}

// UpsertMany is a total overwrite of the affected (user, type) rows; callers
// needing partial update must read-modify-write individual entries.
func (r *preferenceRepository) UpsertMany(prefs []*models.UserNotificationPreference) error {
	if len(prefs) == 0 {
		return nil
	}
	for _, pref := range prefs {
		pref.Normalize()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "notification_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"delivery_method", "frequency", "updated_at"}),
	}).Create(prefs).Error
}

func (r *preferenceRepository) DeleteForUser(userID string) error {
	return r.db.Where("user_id = ?", userID).
		Delete(&models.UserNotificationPreference{}).Error
}
