package models

// DeliveryMethod selects the channels a notification type may use.
type DeliveryMethod string

const (
	DeliveryDisabled DeliveryMethod = "disabled"
	DeliveryInApp    DeliveryMethod = "in_app"
	DeliveryEmail    DeliveryMethod = "email"
	DeliveryBoth     DeliveryMethod = "both"
)

// Frequency controls the email channel only; in-app delivery is always
// immediate or suppressed.
type Frequency string

const (
	FrequencyDisabled     Frequency = "disabled_frequency"
	FrequencyImmediate    Frequency = "immediate"
	FrequencyDailyDigest  Frequency = "daily_digest"
	FrequencyWeeklyDigest Frequency = "weekly_digest"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryDisabled, DeliveryInApp, DeliveryEmail, DeliveryBoth:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDisabled, FrequencyImmediate, FrequencyDailyDigest, FrequencyWeeklyDigest:
		return true
	}
	return false
}

// UserNotificationPreference is one (user, notification type) row.
// Invariant: DeliveryMethod == disabled ⇔ Frequency == disabled_frequency.
type UserNotificationPreference struct {
	BaseModel
	UserID           string         `gorm:"not null;uniqueIndex:idx_user_notification_type" json:"user_id"`
	NotificationType string         `gorm:"not null;uniqueIndex:idx_user_notification_type" json:"notification_type"`
	DeliveryMethod   DeliveryMethod `gorm:"not null;default:in_app" json:"delivery_method"`
	Frequency        Frequency      `gorm:"not null;default:immediate" json:"frequency"`
}

// Normalize enforces the disabled⇔disabled invariant in both directions.
func (p *UserNotificationPreference) Normalize() {
	if p.DeliveryMethod == DeliveryDisabled {
		p.Frequency = FrequencyDisabled
	} else if p.Frequency == FrequencyDisabled {
		p.DeliveryMethod = DeliveryDisabled
	}
}

func (p *UserNotificationPreference) Enabled() bool {
	return p.DeliveryMethod != DeliveryDisabled && p.Frequency != FrequencyDisabled
}

func (p *UserNotificationPreference) DeliversInApp() bool {
	return p.Enabled() && (p.DeliveryMethod == DeliveryInApp || p.DeliveryMethod == DeliveryBoth)
}

func (p *UserNotificationPreference) DeliversEmail() bool {
	return p.Enabled() && (p.DeliveryMethod == DeliveryEmail || p.DeliveryMethod == DeliveryBoth)
}

// DefaultDeliveryMethodFor mirrors the seeding rules: every type starts on
// both channels.
func DefaultDeliveryMethodFor(typeKey string) DeliveryMethod {
	return DeliveryBoth
}

// DefaultFrequencyFor seeds urgent and high-urgency types as immediate and
// the rest as a daily digest.
func DefaultFrequencyFor(typeKey string) Frequency {
	if t, ok := NotificationTypeByKey(typeKey); ok && t.IsUrgent() {
		return FrequencyImmediate
	}
	return FrequencyDailyDigest
}
