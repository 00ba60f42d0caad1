package workers

import (
	"errors"
	"testing"
	"time"

	"ged_backend/internal/email"
	"ged_backend/internal/models"
	"ged_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []email.Email
	data []email.TemplateData
	err  error
}

func (m *recordingMailer) Send(e *email.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, *e)
	return nil
}

func (m *recordingMailer) SendWithTemplate(_ string, data email.TemplateData, e *email.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, *e)
	m.data = append(m.data, data)
	return nil
}

func (m *recordingMailer) Validate() error { return nil }
func (m *recordingMailer) Close() error    { return nil }

type workerFixture struct {
	worker  *DigestWorker
	digests repositories.DigestRepository
	users   *repositories.MemoryUserRepository
	mailer  *recordingMailer
	userID  string
	window  time.Time
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	digests := repositories.NewMemoryDigestRepository()
	users := repositories.NewMemoryUserRepository()
	mailer := &recordingMailer{}
	userID := users.Add(models.User{Email: "claire.moreau@example.fr"})

	worker := NewDigestWorker(digests, users, mailer, "", "")
	window := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)
	worker.now = func() time.Time { return window.Add(31 * time.Hour) }

	return &workerFixture{
		worker:  worker,
		digests: digests,
		users:   users,
		mailer:  mailer,
		userID:  userID,
		window:  window,
	}
}

func (f *workerFixture) append(t *testing.T, frequency models.Frequency, title string) {
	t.Helper()
	require.NoError(t, f.digests.Append(&models.DigestEntry{
		UserID:           f.userID,
		WindowStart:      f.window,
		Frequency:        frequency,
		NotificationType: models.TypeDocumentShared,
		Title:            title,
		Message:          "message",
	}))
}

func TestDigestWorker_DrainSendsOneSummaryAndPurges(t *testing.T) {
	f := newWorkerFixture(t)
	f.append(t, models.FrequencyDailyDigest, "Document partagé")
	f.append(t, models.FrequencyDailyDigest, "Validation demandée")

	f.worker.drain(models.FrequencyDailyDigest)

	require.Len(t, f.mailer.sent, 1, "one window, one email")
	mail := f.mailer.sent[0]
	assert.Equal(t, []string{"claire.moreau@example.fr"}, mail.To)
	assert.Equal(t, "Votre résumé quotidien des notifications", mail.Subject)
	assert.Equal(t, "2 notifications pendant cette période", f.mailer.data[0]["Heading"])
	items, ok := f.mailer.data[0]["Items"].([]map[string]string)
	require.True(t, ok)
	assert.Len(t, items, 2)

	entries, err := f.digests.Entries(f.userID, f.window, models.FrequencyDailyDigest)
	require.NoError(t, err)
	assert.Empty(t, entries, "sent entries are purged")
}

func TestDigestWorker_WeeklyWording(t *testing.T) {
	f := newWorkerFixture(t)
	f.append(t, models.FrequencyWeeklyDigest, "Document partagé")

	f.worker.drain(models.FrequencyWeeklyDigest)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Votre résumé hebdomadaire des notifications", f.mailer.sent[0].Subject)
	assert.Equal(t, "1 notification pendant cette période", f.mailer.data[0]["Heading"])
}

func TestDigestWorker_FailedSendKeepsEntries(t *testing.T) {
	f := newWorkerFixture(t)
	f.append(t, models.FrequencyDailyDigest, "Document partagé")
	f.mailer.err = errors.New("smtp down")

	f.worker.drain(models.FrequencyDailyDigest)

	entries, err := f.digests.Entries(f.userID, f.window, models.FrequencyDailyDigest)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "a failed send must retry on the next run")

	// The mailer recovers, the retry drains the window.
	f.mailer.err = nil
	f.worker.drain(models.FrequencyDailyDigest)
	require.Len(t, f.mailer.sent, 1)

	entries, err = f.digests.Entries(f.userID, f.window, models.FrequencyDailyDigest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDigestWorker_OpenWindowsAreLeftAlone(t *testing.T) {
	f := newWorkerFixture(t)
	f.append(t, models.FrequencyDailyDigest, "Document partagé")
	f.worker.now = func() time.Time { return f.window }

	f.worker.drain(models.FrequencyDailyDigest)

	assert.Empty(t, f.mailer.sent, "a window that just opened is not drained")
}

func TestDigestWorker_UnknownRecipientKeepsEntries(t *testing.T) {
	f := newWorkerFixture(t)
	require.NoError(t, f.digests.Append(&models.DigestEntry{
		UserID:           "ghost",
		WindowStart:      f.window,
		Frequency:        models.FrequencyDailyDigest,
		NotificationType: models.TypeDocumentShared,
		Title:            "titre",
	}))

	f.worker.drain(models.FrequencyDailyDigest)

	assert.Empty(t, f.mailer.sent)
	entries, err := f.digests.Entries("ghost", f.window, models.FrequencyDailyDigest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDigestWorker_StartRejectsBadSchedule(t *testing.T) {
	f := newWorkerFixture(t)
	f.worker.dailySpec = "pas un cron"

	err := f.worker.Start()
	assert.Error(t, err)
}

func TestDigestWorker_StartAndStop(t *testing.T) {
	f := newWorkerFixture(t)
	require.NoError(t, f.worker.Start())
	f.worker.Stop()
}
