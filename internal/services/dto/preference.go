package dto

import "ged_backend/internal/models"

// ---------------- Requests ----------------

type PreferenceUpdateRequest struct {
	NotificationType string `json:"notification_type" validate:"required,is-notification-type"`
	DeliveryMethod   string `json:"delivery_method" validate:"required,is-delivery-method"`
	Frequency        string `json:"frequency" validate:"required,is-frequency"`
}

// BulkPreferenceUpdateRequest mirrors the settings form: one entry per
// notification type row. Types absent from the payload keep their current
// (or default) preference.
type BulkPreferenceUpdateRequest struct {
	Preferences []PreferenceUpdateRequest `json:"preferences" validate:"required,min=1,dive"`
}

type QuickSetRequest struct {
	Mode string `json:"mode" validate:"required,oneof=enable_all essential_only disable_all"`
}

// ---------------- Responses ----------------

type PreferenceResponse struct {
	NotificationType string                `json:"notification_type"`
	Category         models.Category       `json:"category"`
	Label            string                `json:"label"`
	Urgent           bool                  `json:"urgent"`
	DeliveryMethod   models.DeliveryMethod `json:"delivery_method"`
	Frequency        models.Frequency      `json:"frequency"`
	IsDefault        bool                  `json:"is_default"`
}

type PreferenceMatrixResponse struct {
	Preferences []*PreferenceResponse `json:"preferences"`
	Categories  []models.Category     `json:"categories"`
}

type QuickSetResponse struct {
	Mode    string `json:"mode"`
	Updated int    `json:"updated"`
}
