package workers

import (
	"fmt"
	"time"

	"ged_backend/internal/email"
	"ged_backend/internal/logger"
	"ged_backend/internal/models"
	"ged_backend/internal/repositories"

	"github.com/robfig/cron/v3"
)

// DigestWorker drains the daily and weekly digest accumulators into one
// summary email per (user, window).
type DigestWorker struct {
	digestRepo repositories.DigestRepository
	userRepo   repositories.UserRepository
	mailer     email.Provider
	cron       *cron.Cron
	dailySpec  string
	weeklySpec string
	now        func() time.Time
}

// NewDigestWorker builds the worker with the drain schedules. The defaults
// drain daily digests at 07:00 and weekly digests Monday 07:00.
func NewDigestWorker(
	digestRepo repositories.DigestRepository,
	userRepo repositories.UserRepository,
	mailer email.Provider,
	dailySpec, weeklySpec string,
) *DigestWorker {
	if dailySpec == "" {
		dailySpec = "0 7 * * *"
	}
	if weeklySpec == "" {
		weeklySpec = "0 7 * * 1"
	}
	return &DigestWorker{
		digestRepo: digestRepo,
		userRepo:   userRepo,
		mailer:     mailer,
		cron:       cron.New(),
		dailySpec:  dailySpec,
		weeklySpec: weeklySpec,
		now:        time.Now,
	}
}

func (w *DigestWorker) Start() error {
	if _, err := w.cron.AddFunc(w.dailySpec, func() {
		w.drain(models.FrequencyDailyDigest)
	}); err != nil {
		return fmt.Errorf("invalid daily digest schedule: %w", err)
	}
	if _, err := w.cron.AddFunc(w.weeklySpec, func() {
		w.drain(models.FrequencyWeeklyDigest)
	}); err != nil {
		return fmt.Errorf("invalid weekly digest schedule: %w", err)
	}
	w.cron.Start()
	return nil
}

func (w *DigestWorker) Stop() {
	w.cron.Stop()
}

// drain sends one summary per pending window and purges the entries only
// after the mail went out, so a failed send retries on the next run.
func (w *DigestWorker) drain(frequency models.Frequency) {
	windows, err := w.digestRepo.PendingWindows(frequency, w.now())
	if err != nil {
		logger.WorkerLog("digest", "pending_windows", err)
		return
	}

	for _, window := range windows {
		if err := w.sendWindow(window, frequency); err != nil {
			logger.WorkerLog("digest", "send_window", err)
			continue
		}
		if err := w.digestRepo.Purge(window.UserID, window.WindowStart, frequency); err != nil {
			logger.WorkerLog("digest", "purge_window", err)
		}
	}
	logger.WorkerLog("digest", string(frequency), nil)
}

func (w *DigestWorker) sendWindow(window repositories.DigestWindow, frequency models.Frequency) error {
	entries, err := w.digestRepo.Entries(window.UserID, window.WindowStart, frequency)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	user, err := w.userRepo.FindByID(window.UserID)
	if err != nil {
		return fmt.Errorf("digest recipient %s: %w", window.UserID, err)
	}

	subject, heading := digestWording(frequency, len(entries))

	items := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		items = append(items, map[string]string{
			"Title":   entry.Title,
			"Message": entry.Message,
		})
	}

	return w.mailer.SendWithTemplate("digest", email.TemplateData{
		"Heading": heading,
		"Items":   items,
	}, &email.Email{
		To:      []string{user.Email},
		Subject: subject,
		Body:    heading,
	})
}

func digestWording(frequency models.Frequency, count int) (subject, heading string) {
	if frequency == models.FrequencyWeeklyDigest {
		subject = "Votre résumé hebdomadaire des notifications"
	} else {
		subject = "Votre résumé quotidien des notifications"
	}
	if count == 1 {
		heading = "1 notification pendant cette période"
	} else {
		heading = fmt.Sprintf("%d notifications pendant cette période", count)
	}
	return subject, heading
}
