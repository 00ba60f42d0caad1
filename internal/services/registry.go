package services

import "ged_backend/internal/email"

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	PreferenceService   PreferenceService
	DeliveryService     DeliveryService
	NotificationService NotificationService
	EmailService        email.Provider
}
