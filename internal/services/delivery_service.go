package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ged_backend/internal/email"
	"ged_backend/internal/models"
	"ged_backend/internal/realtime"
	"ged_backend/internal/repositories"
	"ged_backend/internal/services/dto"

	"gorm.io/datatypes"
)

// DeliveryDecision is the routing outcome for one event.
type DeliveryDecision struct {
	InApp       bool
	Email       bool
	EmailDigest bool
	Frequency   models.Frequency
	// DigestWindow is set when EmailDigest is true: the start of the window
	// the event accumulates into.
	DigestWindow time.Time
	// Suppressed is true when the preference disabled the type outright. It
	// records the preference state, not the outcome: an urgent event keeps
	// Suppressed set while still forcing InApp true.
	Suppressed bool
}

// DeliveryService decides where each event goes and executes the decision:
// persist the in-app record, fan it out to live connections, send or
// accumulate the email.
type DeliveryService interface {
	Decide(userID, typeKey string, priority models.Urgency) (*DeliveryDecision, error)
	Deliver(req *dto.CreateNotificationRequest) (*models.Notification, error)
}

type deliveryService struct {
	preferences      PreferenceService
	notificationRepo repositories.NotificationRepository
	digestRepo       repositories.DigestRepository
	userRepo         repositories.UserRepository
	publisher        realtime.Publisher
	mailer           email.Provider
	baseURL          string
	now              func() time.Time
}

func NewDeliveryService(
	preferences PreferenceService,
	notificationRepo repositories.NotificationRepository,
	digestRepo repositories.DigestRepository,
	userRepo repositories.UserRepository,
	publisher realtime.Publisher,
	mailer email.Provider,
	baseURL string,
) DeliveryService {
	return &deliveryService{
		preferences:      preferences,
		notificationRepo: notificationRepo,
		digestRepo:       digestRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		mailer:           mailer,
		baseURL:          baseURL,
		now:              time.Now,
	}
}

// Decide resolves the preference and applies the urgent override: an urgent
// event always reaches the in-app channel, even when the user disabled the
// type. The email channel keeps obeying the preference.
func (s *deliveryService) Decide(userID, typeKey string, priority models.Urgency) (*DeliveryDecision, error) {
	pref, err := s.preferences.Resolve(userID, typeKey)
	if err != nil {
		return nil, err
	}

	decision := &DeliveryDecision{Frequency: pref.Frequency}

	if !pref.Enabled() {
		decision.Suppressed = true
		if priority == models.UrgencyUrgent {
			decision.InApp = true
		}
		return decision, nil
	}

	decision.InApp = pref.DeliversInApp()
	if !pref.DeliversEmail() {
		return decision, nil
	}

	switch pref.Frequency {
	case models.FrequencyImmediate:
		decision.Email = true
	case models.FrequencyDailyDigest:
		decision.EmailDigest = true
		decision.DigestWindow = dailyWindowStart(s.now())
	case models.FrequencyWeeklyDigest:
		decision.EmailDigest = true
		decision.DigestWindow = weeklyWindowStart(s.now())
	}
	return decision, nil
}

// Deliver routes one event end to end. The in-app record and fanout happen
// first; a failing email never takes down the in-app delivery.
func (s *deliveryService) Deliver(req *dto.CreateNotificationRequest) (*models.Notification, error) {
	t, ok := models.NotificationTypeByKey(req.Type)
	if !ok {
		return nil, fmt.Errorf("unknown notification type: %s", req.Type)
	}

	decision, err := s.Decide(req.UserID, req.Type, t.Urgency)
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:           req.UserID,
		NotificationType: req.Type,
		Title:            req.Title,
		Message:          req.Message,
		Path:             req.Path,
		Priority:         t.Urgency,
	}
	if req.Data != nil {
		jsonData, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
		notification.Data = datatypes.JSON(jsonData)
	}

	if decision.InApp {
		if err := s.notificationRepo.Create(notification); err != nil {
			return nil, err
		}
		unread, err := s.notificationRepo.UnreadCount(req.UserID)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(req.UserID, realtime.NewNotificationEvent(notification, unread))
	}

	switch {
	case decision.Email:
		if err := s.sendImmediateEmail(req.UserID, notification); err != nil {
			slog.Error("immediate notification email failed", "user_id", req.UserID, "type", req.Type, "err", err)
		}
	case decision.EmailDigest:
		entry := &models.DigestEntry{
			UserID:           req.UserID,
			WindowStart:      decision.DigestWindow,
			Frequency:        decision.Frequency,
			NotificationType: req.Type,
			Title:            req.Title,
			Message:          req.Message,
			Path:             req.Path,
		}
		if err := s.digestRepo.Append(entry); err != nil {
			slog.Error("digest accumulation failed", "user_id", req.UserID, "type", req.Type, "err", err)
		}
	}

	if !decision.InApp {
		return nil, nil
	}
	return notification, nil
}

func (s *deliveryService) sendImmediateEmail(userID string, n *models.Notification) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}

	data := email.TemplateData{
		"Title":   n.Title,
		"Message": n.Message,
	}
	if n.Path != "" {
		data["URL"] = s.baseURL + n.Path
	}

	return s.mailer.SendWithTemplate("notification", data, &email.Email{
		To:      []string{user.Email},
		Subject: "Nouvelle notification : " + n.Title,
		Body:    n.Title + "\n\n" + n.Message,
	})
}

// dailyWindowStart is local midnight of the event day.
func dailyWindowStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// weeklyWindowStart is local midnight of the Sunday opening the event week.
func weeklyWindowStart(now time.Time) time.Time {
	return dailyWindowStart(now).AddDate(0, 0, -int(now.Weekday()))
}
