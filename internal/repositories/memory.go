package repositories

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"ged_backend/internal/models"

	"github.com/google/uuid"
)

// In-memory repositories with the same transition semantics as the gorm
// ones. They back the unit and handler tests and small single-node
// deployments that run without postgres.

type memoryNotificationRepository struct {
	mu     sync.Mutex
	byID   map[string]*models.Notification
	byUser map[string][]string
}

func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{
		byID:   make(map[string]*models.Notification),
		byUser: make(map[string][]string),
	}
}

func (r *memoryNotificationRepository) Create(notification *models.Notification) error {
	if notification.UserID == "" {
		return errors.New("user ID is required")
	}
	if !models.IsValidNotificationType(notification.NotificationType) {
		return errors.New("invalid notification type: " + notification.NotificationType)
	}
	if notification.Title == "" {
		return errors.New("notification title is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	stored := *notification
	r.byID[notification.ID] = &stored
	r.byUser[notification.UserID] = append(r.byUser[notification.UserID], notification.ID)
	return nil
}

func (r *memoryNotificationRepository) FindByID(userID, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.active(userID, id)
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *memoryNotificationRepository) FindForUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Notification
	for _, id := range r.byUser[userID] {
		n := r.active(userID, id)
		if n == nil {
			continue
		}
		if criteria.UnreadOnly && n.Read() {
			continue
		}
		if criteria.Category != "" && n.Category() != criteria.Category {
			continue
		}
		matched = append(matched, n)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page, pageSize := normalizePagination(criteria.Page, criteria.PageSize)
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Notification, 0, end-start)
	for _, n := range matched[start:end] {
		out = append(out, *n)
	}
	return out, total, nil
}

func (r *memoryNotificationRepository) MarkAsRead(userID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markRead(userID, id), nil
}

func (r *memoryNotificationRepository) MarkAllAsRead(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, id := range r.byUser[userID] {
		if r.markRead(userID, id) {
			affected++
		}
	}
	return affected, nil
}

func (r *memoryNotificationRepository) MarkManyAsRead(userID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, id := range dedup(ids) {
		if r.markRead(userID, id) {
			affected++
		}
	}
	return affected, nil
}

func (r *memoryNotificationRepository) Delete(userID, id string) (bool, bool, error) {
	deleted, wasUnread, err := r.DeleteMany(userID, []string{id})
	return deleted > 0, wasUnread > 0, err
}

func (r *memoryNotificationRepository) DeleteMany(userID string, ids []string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted, wasUnread int64
	now := time.Now()
	for _, id := range dedup(ids) {
		n := r.active(userID, id)
		if n == nil {
			continue
		}
		if !n.Read() {
			wasUnread++
		}
		n.DeletedAt.Time = now
		n.DeletedAt.Valid = true
		deleted++
	}
	return deleted, wasUnread, nil
}

func (r *memoryNotificationRepository) UnreadCount(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unreadLocked(userID), nil
}

func (r *memoryNotificationRepository) CountsByCategory(userID string) (map[models.Category]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.Category]int64)
	for _, id := range r.byUser[userID] {
		if n := r.active(userID, id); n != nil {
			counts[n.Category()]++
		}
	}
	return counts, nil
}

// active returns the live stored row, or nil if missing, deleted or owned
// by another user. Callers must hold the lock.
func (r *memoryNotificationRepository) active(userID, id string) *models.Notification {
	n, ok := r.byID[id]
	if !ok || n.UserID != userID || n.DeletedAt.Valid {
		return nil
	}
	return n
}

func (r *memoryNotificationRepository) markRead(userID, id string) bool {
	n := r.active(userID, id)
	if n == nil || n.Read() {
		return false
	}
	now := time.Now()
	n.ReadAt = &now
	return true
}

func (r *memoryNotificationRepository) unreadLocked(userID string) int64 {
	var count int64
	for _, id := range r.byUser[userID] {
		if n := r.active(userID, id); n != nil && !n.Read() {
			count++
		}
	}
	return count
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type memoryPreferenceRepository struct {
	mu    sync.Mutex
	prefs map[string]*models.UserNotificationPreference // userID + "/" + typeKey
}

func NewMemoryPreferenceRepository() PreferenceRepository {
	return &memoryPreferenceRepository{
		prefs: make(map[string]*models.UserNotificationPreference),
	}
}

func prefKey(userID, typeKey string) string {
	return userID + "/" + typeKey
}

func (r *memoryPreferenceRepository) Find(userID, typeKey string) (*models.UserNotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pref, ok := r.prefs[prefKey(userID, typeKey)]
	if !ok {
		return nil, ErrPreferenceNotFound
	}
	copied := *pref
	return &copied, nil
}

func (r *memoryPreferenceRepository) ListForUser(userID string) ([]models.UserNotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var prefs []models.UserNotificationPreference
	for key, pref := range r.prefs {
		if strings.HasPrefix(key, userID+"/") {
			prefs = append(prefs, *pref)
		}
	}
	sort.Slice(prefs, func(i, j int) bool {
		return prefs[i].NotificationType < prefs[j].NotificationType
	})
	return prefs, nil
}

func (r *memoryPreferenceRepository) Upsert(pref *models.UserNotificationPreference) error {
	return r.UpsertMany([]*models.UserNotificationPreference{pref})
}

func (r *memoryPreferenceRepository) UpsertMany(prefs []*models.UserNotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pref := range prefs {
		pref.Normalize()
		key := prefKey(pref.UserID, pref.NotificationType)
		if existing, ok := r.prefs[key]; ok {
			existing.DeliveryMethod = pref.DeliveryMethod
			existing.Frequency = pref.Frequency
			existing.UpdatedAt = time.Now()
			continue
		}
		if pref.ID == "" {
			pref.ID = uuid.NewString()
		}
		stored := *pref
		r.prefs[key] = &stored
	}
	return nil
}

func (r *memoryPreferenceRepository) DeleteForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.prefs {
		if strings.HasPrefix(key, userID+"/") {
			delete(r.prefs, key)
		}
	}
	return nil
}

type memoryDigestRepository struct {
	mu      sync.Mutex
	entries []models.DigestEntry
}

func NewMemoryDigestRepository() DigestRepository {
	return &memoryDigestRepository{}
}

func (r *memoryDigestRepository) Append(entry *models.DigestEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryDigestRepository) PendingWindows(frequency models.Frequency, before time.Time) ([]DigestWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var windows []DigestWindow
	for _, e := range r.entries {
		if e.Frequency != frequency || !e.WindowStart.Before(before) {
			continue
		}
		key := e.UserID + e.WindowStart.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		windows = append(windows, DigestWindow{UserID: e.UserID, WindowStart: e.WindowStart})
	}
	return windows, nil
}

func (r *memoryDigestRepository) Entries(userID string, windowStart time.Time, frequency models.Frequency) ([]models.DigestEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DigestEntry
	for _, e := range r.entries {
		if e.UserID == userID && e.Frequency == frequency && e.WindowStart.Equal(windowStart) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryDigestRepository) Purge(userID string, windowStart time.Time, frequency models.Frequency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.UserID == userID && e.Frequency == frequency && e.WindowStart.Equal(windowStart) {
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return nil
}
