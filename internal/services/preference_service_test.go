package services

import (
	"testing"

	"ged_backend/internal/models"
	"ged_backend/internal/repositories"
	"ged_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPreferenceService(t *testing.T) PreferenceService {
	t.Helper()
	return NewPreferenceService(repositories.NewMemoryPreferenceRepository())
}

func TestPreferenceService_ResolveFallsBackToDefault(t *testing.T) {
	svc := newPreferenceService(t)

	pref, err := svc.Resolve("u1", models.TypeDocumentShared)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryInApp, pref.DeliveryMethod)
	assert.Equal(t, models.FrequencyImmediate, pref.Frequency)

	_, err = svc.Resolve("u1", "not_a_type")
	assert.Error(t, err)
}

func TestPreferenceService_ResolvePrefersStoredRow(t *testing.T) {
	svc := newPreferenceService(t)
	require.NoError(t, svc.Set("u1", models.TypeDocumentShared, models.DeliveryEmail, models.FrequencyWeeklyDigest))

	pref, err := svc.Resolve("u1", models.TypeDocumentShared)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryEmail, pref.DeliveryMethod)
	assert.Equal(t, models.FrequencyWeeklyDigest, pref.Frequency)
}

func TestPreferenceService_MatrixCoversCatalogInOrder(t *testing.T) {
	svc := newPreferenceService(t)
	require.NoError(t, svc.Set("u1", models.TypeBudgetExceeded, models.DeliveryBoth, models.FrequencyImmediate))

	matrix, err := svc.Matrix("u1")
	require.NoError(t, err)

	types := models.AllNotificationTypes()
	require.Len(t, matrix.Preferences, len(types))
	for i, entry := range matrix.Preferences {
		assert.Equal(t, types[i].Key, entry.NotificationType, "matrix must follow catalog order")
		if entry.NotificationType == models.TypeBudgetExceeded {
			assert.False(t, entry.IsDefault)
			assert.Equal(t, models.DeliveryBoth, entry.DeliveryMethod)
		} else {
			assert.True(t, entry.IsDefault)
			assert.Equal(t, models.DeliveryInApp, entry.DeliveryMethod)
			assert.Equal(t, models.FrequencyImmediate, entry.Frequency)
		}
	}
}

func TestPreferenceService_SetRejectsInvalidInput(t *testing.T) {
	svc := newPreferenceService(t)

	assert.Error(t, svc.Set("u1", "nope", models.DeliveryBoth, models.FrequencyImmediate))
	assert.Error(t, svc.Set("u1", models.TypeDocumentShared, "carrier_pigeon", models.FrequencyImmediate))
	assert.Error(t, svc.Set("u1", models.TypeDocumentShared, models.DeliveryBoth, "hourly"))
}

func TestPreferenceService_DisabledInvariant(t *testing.T) {
	svc := newPreferenceService(t)

	// Disabling the method must drag the frequency along.
	require.NoError(t, svc.Set("u1", models.TypeDocumentShared, models.DeliveryDisabled, models.FrequencyImmediate))
	pref, err := svc.Resolve("u1", models.TypeDocumentShared)
	require.NoError(t, err)
	assert.Equal(t, models.FrequencyDisabled, pref.Frequency)
	assert.False(t, pref.Enabled())

	// And the other way around.
	require.NoError(t, svc.Set("u1", models.TypeProjectCreated, models.DeliveryBoth, models.FrequencyDisabled))
	pref, err = svc.Resolve("u1", models.TypeProjectCreated)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDisabled, pref.DeliveryMethod)
}

func TestPreferenceService_QuickSetEssentialOnly(t *testing.T) {
	svc := newPreferenceService(t)

	resp, err := svc.QuickSet("u1", &dto.QuickSetRequest{Mode: "essential_only"})
	require.NoError(t, err)
	assert.Equal(t, len(models.AllNotificationTypes()), resp.Updated)

	for _, typ := range models.AllNotificationTypes() {
		pref, err := svc.Resolve("u1", typ.Key)
		require.NoError(t, err)
		if typ.IsUrgent() {
			assert.Equal(t, models.DeliveryBoth, pref.DeliveryMethod, typ.Key)
			assert.Equal(t, models.FrequencyImmediate, pref.Frequency, typ.Key)
		} else {
			assert.Equal(t, models.DeliveryDisabled, pref.DeliveryMethod, typ.Key)
			assert.Equal(t, models.FrequencyDisabled, pref.Frequency, typ.Key)
		}
	}
}

func TestPreferenceService_QuickSetUnknownMode(t *testing.T) {
	svc := newPreferenceService(t)
	_, err := svc.QuickSet("u1", &dto.QuickSetRequest{Mode: "everything_off_sometimes"})
	assert.Error(t, err)
}

func TestPreferenceService_SetCategoryKeepsFrequencies(t *testing.T) {
	svc := newPreferenceService(t)
	require.NoError(t, svc.Set("u1", models.TypeProjectCreated, models.DeliveryBoth, models.FrequencyWeeklyDigest))

	require.NoError(t, svc.SetCategory("u1", models.CategoryProjects, models.DeliveryEmail))

	pref, err := svc.Resolve("u1", models.TypeProjectCreated)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryEmail, pref.DeliveryMethod)
	assert.Equal(t, models.FrequencyWeeklyDigest, pref.Frequency, "existing frequency survives the method change")
}

func TestPreferenceService_SetCategoryReenablesDisabledFrequency(t *testing.T) {
	svc := newPreferenceService(t)
	require.NoError(t, svc.Set("u1", models.TypeProjectCreated, models.DeliveryDisabled, models.FrequencyDisabled))

	require.NoError(t, svc.SetCategory("u1", models.CategoryProjects, models.DeliveryInApp))

	pref, err := svc.Resolve("u1", models.TypeProjectCreated)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryInApp, pref.DeliveryMethod)
	assert.Equal(t, models.FrequencyImmediate, pref.Frequency, "re-enabling resets the dead frequency")
}

func TestPreferenceService_IsCategoryEnabled(t *testing.T) {
	svc := newPreferenceService(t)

	enabled, err := svc.IsCategoryEnabled("u1", models.CategoryBudgets)
	require.NoError(t, err)
	assert.True(t, enabled, "defaults deliver in-app")

	require.NoError(t, svc.SetCategory("u1", models.CategoryBudgets, models.DeliveryDisabled))
	enabled, err = svc.IsCategoryEnabled("u1", models.CategoryBudgets)
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = svc.IsCategoryEnabled("u1", "cuisine")
	assert.Error(t, err)
}

func TestPreferenceService_BulkUpdateAllOrNothing(t *testing.T) {
	svc := newPreferenceService(t)

	err := svc.BulkUpdate("u1", &dto.BulkPreferenceUpdateRequest{Preferences: []dto.PreferenceUpdateRequest{
		{NotificationType: models.TypeDocumentShared, DeliveryMethod: "email", Frequency: "daily_digest"},
		{NotificationType: models.TypeProjectCreated, DeliveryMethod: "bogus", Frequency: "immediate"},
	}})
	require.Error(t, err)

	pref, err := svc.Resolve("u1", models.TypeDocumentShared)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryInApp, pref.DeliveryMethod, "rejected batch must not half-apply")

	err = svc.BulkUpdate("u1", &dto.BulkPreferenceUpdateRequest{Preferences: []dto.PreferenceUpdateRequest{
		{NotificationType: models.TypeDocumentShared, DeliveryMethod: "email", Frequency: "daily_digest"},
	}})
	require.NoError(t, err)

	pref, err = svc.Resolve("u1", models.TypeDocumentShared)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryEmail, pref.DeliveryMethod)
	assert.Equal(t, models.FrequencyDailyDigest, pref.Frequency)
}

func TestPreferenceService_ResetToDefaults(t *testing.T) {
	svc := newPreferenceService(t)
	require.NoError(t, svc.SetAll("u1", models.DeliveryDisabled, models.FrequencyDisabled))

	require.NoError(t, svc.ResetToDefaults("u1"))

	for _, typ := range models.AllNotificationTypes() {
		pref, err := svc.Resolve("u1", typ.Key)
		require.NoError(t, err)
		assert.Equal(t, models.DeliveryBoth, pref.DeliveryMethod, typ.Key)
		if typ.IsUrgent() {
			assert.Equal(t, models.FrequencyImmediate, pref.Frequency, typ.Key)
		} else {
			assert.Equal(t, models.FrequencyDailyDigest, pref.Frequency, typ.Key)
		}
	}
}
