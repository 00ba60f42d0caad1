package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"ged_backend/internal/models"
	"ged_backend/internal/services"
	"ged_backend/internal/services/dto"
	"ged_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	*BaseHandler
	preferenceService services.PreferenceService
}

func NewPreferenceHandler(base *BaseHandler, preferenceService services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		BaseHandler:       base,
		preferenceService: preferenceService,
	}
}

func (h *PreferenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	preferences := r.Group("/notification_preferences")
	{
		preferences.GET("", h.Index)
		preferences.PATCH("/bulk_update", h.BulkUpdate)
		preferences.POST("/reset_to_defaults", h.ResetToDefaults)
		preferences.POST("/quick_set", h.QuickSet)
		preferences.GET("/preview", h.Preview)
	}
}

func (h *PreferenceHandler) Index(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	matrix, err := h.preferenceService.Matrix(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, matrix)
}

// BulkUpdate accepts the settings form as submitted by the preferences
// page: preferences[<type>][delivery_method] / preferences[<type>][frequency]
// pairs, form-encoded. A JSON body with the same shape works too.
func (h *PreferenceHandler) BulkUpdate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.BulkPreferenceUpdateRequest
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if !h.BindAndValidateJSON(c, &req) {
			return
		}
	} else {
		parsed, err := parsePreferenceForm(c)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		req = *parsed
	}

	if err := h.preferenceService.BulkUpdate(userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Préférences mises à jour"})
}

func (h *PreferenceHandler) ResetToDefaults(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.preferenceService.ResetToDefaults(userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Préférences réinitialisées"})
}

func (h *PreferenceHandler) QuickSet(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.QuickSetRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	result, err := h.preferenceService.QuickSet(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

var previewTemplate = template.Must(template.New("preview").Parse(`<div class="notification-preview">
  <span class="notification-preview-label">{{.Label}}</span>
  <p class="notification-preview-title">{{.Title}}</p>
  <p class="notification-preview-message">{{.Message}}</p>
</div>`))

// previewSamples holds the example content shown next to each preference
// row so users see what they are enabling.
var previewSamples = map[string][2]string{
	models.TypeDocumentValidationRequested: {"Validation demandée", "Le document « Rapport annuel.pdf » attend votre validation."},
	models.TypeDocumentValidationApproved:  {"Validation approuvée", "Votre document « Rapport annuel.pdf » a été approuvé."},
	models.TypeDocumentValidationRejected:  {"Validation refusée", "Votre document « Rapport annuel.pdf » a été refusé."},
	models.TypeDocumentShared:              {"Document partagé", "Marie Dupont a partagé « Plan projet.xlsx » avec vous."},
	models.TypeDocumentProcessingCompleted: {"Traitement terminé", "Le traitement de « Scan contrat.pdf » est terminé."},
	models.TypeDocumentProcessingFailed:    {"Échec du traitement", "Le traitement de « Scan contrat.pdf » a échoué."},
	models.TypeAuthorizationGranted:        {"Permission accordée", "Vous avez maintenant accès au dossier « Direction »."},
	models.TypeAuthorizationRevoked:        {"Permission révoquée", "Votre accès au dossier « Direction » a été retiré."},
	models.TypeProjectCreated:              {"Nouveau projet créé", "Le projet « Migration GED » vient d'être créé."},
	models.TypeProjectUpdated:              {"Projet mis à jour", "Le projet « Migration GED » a été modifié."},
	models.TypeProjectPhaseCompleted:       {"Phase terminée", "La phase « Cadrage » du projet « Migration GED » est terminée."},
	models.TypeProjectTaskAssigned:         {"Nouvelle tâche assignée", "La tâche « Rédiger le cahier des charges » vous a été assignée."},
	models.TypeProjectTaskOverdue:          {"Tâche en retard", "La tâche « Rédiger le cahier des charges » est en retard."},
	models.TypeBudgetAlert:                 {"Alerte budget", "Le budget du projet « Migration GED » atteint 80 % de consommation."},
	models.TypeBudgetExceeded:              {"Budget dépassé", "Le budget du projet « Migration GED » est dépassé."},
	models.TypeRiskIdentified:              {"Risque identifié", "Un nouveau risque a été identifié sur le projet « Migration GED »."},
	models.TypeDeadlineApproaching:         {"Échéance proche", "L'échéance du projet « Migration GED » est dans 3 jours."},
	models.TypeSystemAnnouncement:          {"Annonce système", "Une maintenance est prévue dimanche à 22h00."},
}

// Preview renders the sample HTML fragment for one notification type.
func (h *PreferenceHandler) Preview(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	typeKey := c.Query("notification_type")
	t, ok := models.NotificationTypeByKey(typeKey)
	if !ok {
		h.HandleServiceError(c, apperrors.NewValidationError(fmt.Sprintf("unknown notification type: %s", typeKey)))
		return
	}

	sample := previewSamples[typeKey]
	var buf strings.Builder
	err := previewTemplate.Execute(&buf, map[string]string{
		"Label":   t.Label,
		"Title":   sample[0],
		"Message": sample[1],
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(buf.String()))
}

// parsePreferenceForm decodes preferences[<type>][delivery_method] and
// preferences[<type>][frequency] form fields.
func parsePreferenceForm(c *gin.Context) (*dto.BulkPreferenceUpdateRequest, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, apperrors.NewValidationError("Invalid form body: " + err.Error())
	}

	byType := make(map[string]*dto.PreferenceUpdateRequest)
	var order []string
	for key, values := range c.Request.PostForm {
		typeKey, field, ok := splitPreferenceKey(key)
		if !ok || len(values) == 0 {
			continue
		}
		entry, exists := byType[typeKey]
		if !exists {
			entry = &dto.PreferenceUpdateRequest{NotificationType: typeKey}
			byType[typeKey] = entry
			order = append(order, typeKey)
		}
		switch field {
		case "delivery_method":
			entry.DeliveryMethod = values[0]
		case "frequency":
			entry.Frequency = values[0]
		}
	}

	if len(byType) == 0 {
		return nil, apperrors.NewValidationError("No preference entries in form")
	}

	req := &dto.BulkPreferenceUpdateRequest{}
	for _, typeKey := range order {
		entry := byType[typeKey]
		if entry.DeliveryMethod == "" || entry.Frequency == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("incomplete preference entry for %s", typeKey))
		}
		req.Preferences = append(req.Preferences, *entry)
	}
	return req, nil
}

// splitPreferenceKey parses "preferences[<type>][<field>]".
func splitPreferenceKey(key string) (typeKey, field string, ok bool) {
	const prefix = "preferences["
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	rest := strings.TrimPrefix(key, prefix)
	parts := strings.SplitN(rest, "][", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], "]"), true
}
