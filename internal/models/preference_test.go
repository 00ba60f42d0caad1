package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferenceNormalize(t *testing.T) {
	p := &UserNotificationPreference{DeliveryMethod: DeliveryDisabled, Frequency: FrequencyImmediate}
	p.Normalize()
	assert.Equal(t, FrequencyDisabled, p.Frequency)

	p = &UserNotificationPreference{DeliveryMethod: DeliveryBoth, Frequency: FrequencyDisabled}
	p.Normalize()
	assert.Equal(t, DeliveryDisabled, p.DeliveryMethod)

	p = &UserNotificationPreference{DeliveryMethod: DeliveryEmail, Frequency: FrequencyDailyDigest}
	p.Normalize()
	assert.Equal(t, DeliveryEmail, p.DeliveryMethod)
	assert.Equal(t, FrequencyDailyDigest, p.Frequency)
}

func TestPreferenceChannels(t *testing.T) {
	p := &UserNotificationPreference{DeliveryMethod: DeliveryBoth, Frequency: FrequencyImmediate}
	assert.True(t, p.Enabled())
	assert.True(t, p.DeliversInApp())
	assert.True(t, p.DeliversEmail())

	p.DeliveryMethod = DeliveryInApp
	assert.True(t, p.DeliversInApp())
	assert.False(t, p.DeliversEmail())

	p.DeliveryMethod = DeliveryEmail
	assert.False(t, p.DeliversInApp())
	assert.True(t, p.DeliversEmail())

	p.DeliveryMethod = DeliveryDisabled
	p.Normalize()
	assert.False(t, p.Enabled())
	assert.False(t, p.DeliversInApp())
	assert.False(t, p.DeliversEmail())
}

func TestDefaultFrequencyFollowsUrgency(t *testing.T) {
	assert.Equal(t, FrequencyImmediate, DefaultFrequencyFor(TypeBudgetExceeded))
	assert.Equal(t, FrequencyImmediate, DefaultFrequencyFor(TypeBudgetAlert), "high urgency counts as urgent")
	assert.Equal(t, FrequencyDailyDigest, DefaultFrequencyFor(TypeDocumentShared))
	assert.Equal(t, DeliveryBoth, DefaultDeliveryMethodFor(TypeDocumentShared))
}

func TestNotificationTypeCatalog(t *testing.T) {
	types := AllNotificationTypes()
	assert.Len(t, types, 18)

	seen := make(map[string]bool)
	for _, typ := range types {
		assert.False(t, seen[typ.Key], "duplicate key %s", typ.Key)
		seen[typ.Key] = true
		assert.NotEmpty(t, typ.Label)
		assert.NotEmpty(t, typ.Category)
	}

	urgent, ok := NotificationTypeByKey(TypeProjectTaskOverdue)
	assert.True(t, ok)
	assert.Equal(t, UrgencyUrgent, urgent.Urgency)

	_, ok = NotificationTypeByKey("pneumatique")
	assert.False(t, ok)
	assert.False(t, IsValidNotificationType("pneumatique"))
}

func TestNotificationCategoryFallback(t *testing.T) {
	n := &Notification{NotificationType: "disparu"}
	assert.Equal(t, CategorySystem, n.Category(), "unknown types land in the system bucket")

	n = &Notification{NotificationType: TypeBudgetExceeded, Priority: UrgencyUrgent}
	assert.Equal(t, CategoryBudgets, n.Category())
	assert.True(t, n.Urgent())
}
