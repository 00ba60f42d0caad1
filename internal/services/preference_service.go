package services

import (
	"fmt"

	"ged_backend/internal/models"
	"ged_backend/internal/repositories"
	"ged_backend/internal/services/dto"
	"ged_backend/pkg/apperrors"
)

// PreferenceService resolves and mutates the per-user delivery matrix.
// A user with no stored row for a type gets the resolver default
// (in_app, immediate); stored rows always win.
type PreferenceService interface {
	Resolve(userID, typeKey string) (*models.UserNotificationPreference, error)
	Matrix(userID string) (*dto.PreferenceMatrixResponse, error)

	Set(userID, typeKey string, method models.DeliveryMethod, frequency models.Frequency) error
	SetAll(userID string, method models.DeliveryMethod, frequency models.Frequency) error
	SetUrgentOnly(userID string, method models.DeliveryMethod, frequency models.Frequency) error
	SetNonUrgent(userID string, method models.DeliveryMethod, frequency models.Frequency) error
	SetCategory(userID string, category models.Category, method models.DeliveryMethod) error
	IsCategoryEnabled(userID string, category models.Category) (bool, error)

	BulkUpdate(userID string, req *dto.BulkPreferenceUpdateRequest) error
	QuickSet(userID string, req *dto.QuickSetRequest) (*dto.QuickSetResponse, error)
	ResetToDefaults(userID string) error
}

type preferenceService struct {
	preferenceRepo repositories.PreferenceRepository
}

func NewPreferenceService(preferenceRepo repositories.PreferenceRepository) PreferenceService {
	return &preferenceService{preferenceRepo: preferenceRepo}
}

func (s *preferenceService) Resolve(userID, typeKey string) (*models.UserNotificationPreference, error) {
	if !models.IsValidNotificationType(typeKey) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown notification type: %s", typeKey))
	}
	pref, err := s.preferenceRepo.Find(userID, typeKey)
	if err == nil {
		return pref, nil
	}
	if err != repositories.ErrPreferenceNotFound {
		return nil, err
	}
	return &models.UserNotificationPreference{
		UserID:           userID,
		NotificationType: typeKey,
		DeliveryMethod:   models.DeliveryInApp,
		Frequency:        models.FrequencyImmediate,
	}, nil
}

// Matrix returns one entry per catalog type, stored rows merged over the
// resolver default, in catalog order.
func (s *preferenceService) Matrix(userID string) (*dto.PreferenceMatrixResponse, error) {
	stored, err := s.preferenceRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]*models.UserNotificationPreference, len(stored))
	for i := range stored {
		byType[stored[i].NotificationType] = &stored[i]
	}

	types := models.AllNotificationTypes()
	entries := make([]*dto.PreferenceResponse, 0, len(types))
	for _, t := range types {
		entry := &dto.PreferenceResponse{
			NotificationType: t.Key,
			Category:         t.Category,
			Label:            t.Label,
			Urgent:           t.IsUrgent(),
		}
		if pref, ok := byType[t.Key]; ok {
			entry.DeliveryMethod = pref.DeliveryMethod
			entry.Frequency = pref.Frequency
		} else {
			entry.DeliveryMethod = models.DeliveryInApp
			entry.Frequency = models.FrequencyImmediate
			entry.IsDefault = true
		}
		entries = append(entries, entry)
	}

	return &dto.PreferenceMatrixResponse{
		Preferences: entries,
		Categories:  models.Categories(),
	}, nil
}

func (s *preferenceService) Set(userID, typeKey string, method models.DeliveryMethod, frequency models.Frequency) error {
	if !models.IsValidNotificationType(typeKey) {
		return apperrors.NewValidationError(fmt.Sprintf("unknown notification type: %s", typeKey))
	}
	if !method.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid delivery method: %s", method))
	}
	if !frequency.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid frequency: %s", frequency))
	}
	return s.preferenceRepo.Upsert(&models.UserNotificationPreference{
		UserID:           userID,
		NotificationType: typeKey,
		DeliveryMethod:   method,
		Frequency:        frequency,
	})
}

func (s *preferenceService) SetAll(userID string, method models.DeliveryMethod, frequency models.Frequency) error {
	return s.setWhere(userID, method, frequency, func(models.NotificationType) bool { return true })
}

func (s *preferenceService) SetUrgentOnly(userID string, method models.DeliveryMethod, frequency models.Frequency) error {
	return s.setWhere(userID, method, frequency, func(t models.NotificationType) bool { return t.IsUrgent() })
}

func (s *preferenceService) SetNonUrgent(userID string, method models.DeliveryMethod, frequency models.Frequency) error {
	return s.setWhere(userID, method, frequency, func(t models.NotificationType) bool { return !t.IsUrgent() })
}

func (s *preferenceService) setWhere(userID string, method models.DeliveryMethod, frequency models.Frequency, match func(models.NotificationType) bool) error {
	if !method.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid delivery method: %s", method))
	}
	if !frequency.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid frequency: %s", frequency))
	}
	var prefs []*models.UserNotificationPreference
	for _, t := range models.AllNotificationTypes() {
		if !match(t) {
			continue
		}
		prefs = append(prefs, &models.UserNotificationPreference{
			UserID:           userID,
			NotificationType: t.Key,
			DeliveryMethod:   method,
			Frequency:        frequency,
		})
	}
	return s.preferenceRepo.UpsertMany(prefs)
}

// SetCategory changes the delivery method of every type in the category.
// The email frequency each type already has is kept, except when the
// category is disabled outright.
func (s *preferenceService) SetCategory(userID string, category models.Category, method models.DeliveryMethod) error {
	if !method.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid delivery method: %s", method))
	}
	types := models.NotificationTypesByCategory(category)
	if len(types) == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("unknown category: %s", category))
	}

	prefs := make([]*models.UserNotificationPreference, 0, len(types))
	for _, t := range types {
		current, err := s.Resolve(userID, t.Key)
		if err != nil {
			return err
		}
		frequency := current.Frequency
		if method == models.DeliveryDisabled {
			frequency = models.FrequencyDisabled
		} else if frequency == models.FrequencyDisabled {
			frequency = models.FrequencyImmediate
		}
		prefs = append(prefs, &models.UserNotificationPreference{
			UserID:           userID,
			NotificationType: t.Key,
			DeliveryMethod:   method,
			Frequency:        frequency,
		})
	}
	return s.preferenceRepo.UpsertMany(prefs)
}

// IsCategoryEnabled reports whether at least one type in the category still
// delivers somewhere.
func (s *preferenceService) IsCategoryEnabled(userID string, category models.Category) (bool, error) {
	types := models.NotificationTypesByCategory(category)
	if len(types) == 0 {
		return false, apperrors.NewValidationError(fmt.Sprintf("unknown category: %s", category))
	}
	for _, t := range types {
		pref, err := s.Resolve(userID, t.Key)
		if err != nil {
			return false, err
		}
		if pref.Enabled() {
			return true, nil
		}
	}
	return false, nil
}

// BulkUpdate applies the settings form in one shot. Unknown types or invalid
// enum values reject the whole request so the form never half-applies.
func (s *preferenceService) BulkUpdate(userID string, req *dto.BulkPreferenceUpdateRequest) error {
	prefs := make([]*models.UserNotificationPreference, 0, len(req.Preferences))
	for _, entry := range req.Preferences {
		if !models.IsValidNotificationType(entry.NotificationType) {
			return apperrors.NewValidationError(fmt.Sprintf("unknown notification type: %s", entry.NotificationType))
		}
		method := models.DeliveryMethod(entry.DeliveryMethod)
		frequency := models.Frequency(entry.Frequency)
		if !method.Valid() {
			return apperrors.NewValidationError(fmt.Sprintf("invalid delivery method: %s", entry.DeliveryMethod))
		}
		if !frequency.Valid() {
			return apperrors.NewValidationError(fmt.Sprintf("invalid frequency: %s", entry.Frequency))
		}
		prefs = append(prefs, &models.UserNotificationPreference{
			UserID:           userID,
			NotificationType: entry.NotificationType,
			DeliveryMethod:   method,
			Frequency:        frequency,
		})
	}
	return s.preferenceRepo.UpsertMany(prefs)
}

// QuickSet applies one of the preference page presets.
func (s *preferenceService) QuickSet(userID string, req *dto.QuickSetRequest) (*dto.QuickSetResponse, error) {
	total := len(models.AllNotificationTypes())
	switch req.Mode {
	case "enable_all":
		if err := s.SetAll(userID, models.DeliveryBoth, models.FrequencyImmediate); err != nil {
			return nil, err
		}
	case "essential_only":
		if err := s.SetUrgentOnly(userID, models.DeliveryBoth, models.FrequencyImmediate); err != nil {
			return nil, err
		}
		if err := s.SetNonUrgent(userID, models.DeliveryDisabled, models.FrequencyDisabled); err != nil {
			return nil, err
		}
	case "disable_all":
		if err := s.SetAll(userID, models.DeliveryDisabled, models.FrequencyDisabled); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown quick set mode: %s", req.Mode))
	}
	return &dto.QuickSetResponse{Mode: req.Mode, Updated: total}, nil
}

// ResetToDefaults drops the user's rows and reseeds the catalog defaults:
// both channels, urgent types immediate, the rest on a daily digest.
func (s *preferenceService) ResetToDefaults(userID string) error {
	if err := s.preferenceRepo.DeleteForUser(userID); err != nil {
		return err
	}
	types := models.AllNotificationTypes()
	prefs := make([]*models.UserNotificationPreference, 0, len(types))
	for _, t := range types {
		prefs = append(prefs, &models.UserNotificationPreference{
			UserID:           userID,
			NotificationType: t.Key,
			DeliveryMethod:   models.DefaultDeliveryMethodFor(t.Key),
			Frequency:        models.DefaultFrequencyFor(t.Key),
		})
	}
	return s.preferenceRepo.UpsertMany(prefs)
}
