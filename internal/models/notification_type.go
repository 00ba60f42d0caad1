package models

// Category groups notification types for the preferences screen and the
// bell dropdown filters.
type Category string

const (
	CategoryDocuments      Category = "documents"
	CategoryValidations    Category = "validations"
	CategoryShares         Category = "shares"
	CategoryAuthorizations Category = "authorizations"
	CategoryProjects       Category = "projects"
	CategoryBudgets        Category = "budgets"
	CategoryRisks          Category = "risks"
	CategoryDeadlines      Category = "deadlines"
	CategorySystem         Category = "system"
)

// Urgency drives the in-app override and the urgent/non-urgent bulk
// preference setters.
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyHigh   Urgency = "high"
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

// NotificationType is a static descriptor. The catalog is fixed at compile
// time; preferences and notifications reference types by key.
type NotificationType struct {
	Key      string   `json:"key"`
	Category Category `json:"category"`
	Urgency  Urgency  `json:"urgency"`
	Label    string   `json:"label"`
}

const (
	TypeDocumentValidationRequested   = "document_validation_requested"
	TypeDocumentValidationApproved    = "document_validation_approved"
	TypeDocumentValidationRejected    = "document_validation_rejected"
	TypeDocumentShared                = "document_shared"
	TypeDocumentProcessingCompleted   = "document_processing_completed"
	TypeDocumentProcessingFailed      = "document_processing_failed"
	TypeAuthorizationGranted          = "authorization_granted"
	TypeAuthorizationRevoked          = "authorization_revoked"
	TypeProjectCreated                = "project_created"
	TypeProjectUpdated                = "project_updated"
	TypeProjectPhaseCompleted         = "project_phase_completed"
	TypeProjectTaskAssigned           = "project_task_assigned"
	TypeProjectTaskOverdue            = "project_task_overdue"
	TypeBudgetAlert                   = "budget_alert"
	TypeBudgetExceeded                = "budget_exceeded"
	TypeRiskIdentified                = "risk_identified"
	TypeDeadlineApproaching           = "deadline_approaching"
	TypeSystemAnnouncement            = "system_announcement"
)

// notificationTypes holds the catalog in display order (the order the
// preferences screen lists the rows).
var notificationTypes = []NotificationType{
	{TypeDocumentValidationRequested, CategoryValidations, UrgencyHigh, "Validation demandée"},
	{TypeDocumentValidationApproved, CategoryValidations, UrgencyNormal, "Validation approuvée"},
	{TypeDocumentValidationRejected, CategoryValidations, UrgencyHigh, "Validation refusée"},
	{TypeDocumentShared, CategoryShares, UrgencyNormal, "Document partagé"},
	{TypeDocumentProcessingCompleted, CategoryDocuments, UrgencyLow, "Traitement terminé"},
	{TypeDocumentProcessingFailed, CategoryDocuments, UrgencyHigh, "Échec du traitement"},
	{TypeAuthorizationGranted, CategoryAuthorizations, UrgencyNormal, "Permission accordée"},
	{TypeAuthorizationRevoked, CategoryAuthorizations, UrgencyNormal, "Permission révoquée"},
	{TypeProjectCreated, CategoryProjects, UrgencyNormal, "Nouveau projet créé"},
	{TypeProjectUpdated, CategoryProjects, UrgencyLow, "Projet mis à jour"},
	{TypeProjectPhaseCompleted, CategoryProjects, UrgencyNormal, "Phase terminée"},
	{TypeProjectTaskAssigned, CategoryProjects, UrgencyHigh, "Nouvelle tâche assignée"},
	{TypeProjectTaskOverdue, CategoryProjects, UrgencyUrgent, "Tâche en retard"},
	{TypeBudgetAlert, CategoryBudgets, UrgencyHigh, "Alerte budget"},
	{TypeBudgetExceeded, CategoryBudgets, UrgencyUrgent, "Budget dépassé"},
	{TypeRiskIdentified, CategoryRisks, UrgencyHigh, "Risque identifié"},
	{TypeDeadlineApproaching, CategoryDeadlines, UrgencyUrgent, "Échéance proche"},
	{TypeSystemAnnouncement, CategorySystem, UrgencyNormal, "Annonce système"},
}

var notificationTypesByKey = func() map[string]NotificationType {
	byKey := make(map[string]NotificationType, len(notificationTypes))
	for _, t := range notificationTypes {
		byKey[t.Key] = t
	}
	return byKey
}()

func NotificationTypeByKey(key string) (NotificationType, bool) {
	t, ok := notificationTypesByKey[key]
	return t, ok
}

func IsValidNotificationType(key string) bool {
	_, ok := notificationTypesByKey[key]
	return ok
}

// AllNotificationTypes returns the catalog in display order.
func AllNotificationTypes() []NotificationType {
	types := make([]NotificationType, len(notificationTypes))
	copy(types, notificationTypes)
	return types
}

func NotificationTypesByCategory(category Category) []NotificationType {
	var types []NotificationType
	for _, t := range notificationTypes {
		if t.Category == category {
			types = append(types, t)
		}
	}
	return types
}

// IsUrgent reports whether the type counts as urgent for the
// essential-only preference setters (urgent or high urgency).
func (t NotificationType) IsUrgent() bool {
	return t.Urgency == UrgencyUrgent || t.Urgency == UrgencyHigh
}

func Categories() []Category {
	return []Category{
		CategoryDocuments,
		CategoryValidations,
		CategoryShares,
		CategoryAuthorizations,
		CategoryProjects,
		CategoryBudgets,
		CategoryRisks,
		CategoryDeadlines,
		CategorySystem,
	}
}
