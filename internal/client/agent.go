package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ged_backend/internal/models"
	"ged_backend/internal/realtime"
)

// Sound plays the new-notification chime.
type Sound interface {
	Play()
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// Agent drives the client-side notification state: it applies live events
// from the server stream, keeps the local list and unread counter, and
// performs user actions optimistically with a revert on failure.
type Agent struct {
	mu            sync.Mutex
	notifications []*models.Notification
	unread        int64
	selection     *SelectionSet

	transport     Transport
	toasts        *ToastPresenter
	navbarBadge   Badge
	dropdownBadge Badge
	sound         Sound
	visible       func() bool
	desktop       DesktopNotifier
	confirm       Confirmer
	after         func(d time.Duration, f func()) *time.Timer
}

// AgentConfig wires the agent's surfaces. Transport is required; every
// other field may be nil, in which case that surface is skipped.
type AgentConfig struct {
	Transport     Transport
	Toasts        *ToastPresenter
	NavbarBadge   Badge
	DropdownBadge Badge
	Sound         Sound
	// Visible reports whether the page currently has focus. The chime is
	// skipped while the page is hidden.
	Visible   func() bool
	Desktop   DesktopNotifier
	Confirmer Confirmer
}

func NewAgent(cfg AgentConfig) *Agent {
	return &Agent{
		selection:     NewSelectionSet(),
		transport:     cfg.Transport,
		toasts:        cfg.Toasts,
		navbarBadge:   cfg.NavbarBadge,
		dropdownBadge: cfg.DropdownBadge,
		sound:         cfg.Sound,
		visible:       cfg.Visible,
		desktop:       cfg.Desktop,
		confirm:       cfg.Confirmer,
		after:         time.AfterFunc,
	}
}

// HandleEvent applies one server-pushed event. Unknown actions are ignored
// so older clients survive new event types.
func (a *Agent) HandleEvent(event realtime.Event) {
	switch event.Action {
	case realtime.ActionNewNotification:
		a.handleNewNotification(event)
	case realtime.ActionMarkAsRead:
		a.mu.Lock()
		if n := a.find(event.NotificationID); n != nil && !n.Read() {
			now := time.Now()
			n.ReadAt = &now
		}
		a.setUnreadLocked(event.UnreadCount)
		a.mu.Unlock()
	case realtime.ActionMarkAllAsRead:
		a.mu.Lock()
		now := time.Now()
		for _, n := range a.notifications {
			if !n.Read() {
				readAt := now
				n.ReadAt = &readAt
			}
		}
		a.setUnreadLocked(0)
		a.mu.Unlock()
	case realtime.ActionUpdateCount:
		a.mu.Lock()
		a.setUnreadLocked(event.UnreadCount)
		a.mu.Unlock()
	}
}

func (a *Agent) handleNewNotification(event realtime.Event) {
	if event.Notification == nil {
		return
	}

	a.mu.Lock()
	a.notifications = append([]*models.Notification{event.Notification}, a.notifications...)
	a.setUnreadLocked(event.UnreadCount)
	a.mu.Unlock()

	if a.sound != nil && (a.visible == nil || a.visible()) {
		a.sound.Play()
	}
	showDesktop(a.desktop, event.Notification.ID, event.Notification.Title,
		event.Notification.Message, event.Notification.Urgent(), a.after)
}

// MarkAsRead flips the notification locally before the request goes out, so
// the list reacts instantly. A failed request restores the previous state.
func (a *Agent) MarkAsRead(ctx context.Context, id string) error {
	a.mu.Lock()
	n := a.find(id)
	if n == nil || n.Read() {
		a.mu.Unlock()
		return nil
	}
	now := time.Now()
	n.ReadAt = &now
	a.setUnreadLocked(a.unread - 1)
	a.mu.Unlock()

	if err := a.transport.MarkAsRead(ctx, id); err != nil {
		a.mu.Lock()
		n.ReadAt = nil
		a.setUnreadLocked(a.unread + 1)
		a.mu.Unlock()
		a.toast("Impossible de marquer la notification comme lue", SeverityError)
		return err
	}
	return nil
}

// Delete removes the notification optimistically; a failed request puts it
// back at its previous position.
func (a *Agent) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	index, n := a.findIndexed(id)
	if n == nil {
		a.mu.Unlock()
		return nil
	}
	a.notifications = append(a.notifications[:index], a.notifications[index+1:]...)
	wasUnread := !n.Read()
	if wasUnread {
		a.setUnreadLocked(a.unread - 1)
	}
	a.selection.Deselect(id)
	a.mu.Unlock()

	if err := a.transport.Delete(ctx, id); err != nil {
		a.mu.Lock()
		a.notifications = append(a.notifications[:index], append([]*models.Notification{n}, a.notifications[index:]...)...)
		if wasUnread {
			a.setUnreadLocked(a.unread + 1)
		}
		a.mu.Unlock()
		a.toast("Impossible de supprimer la notification", SeverityError)
		return err
	}
	return nil
}

// MarkAllAsRead flips every listed notification and zeroes the counter.
// Unlike the single-item paths it is not optimistic: reverting "all read"
// would need a snapshot of every row, so local state changes only after the
// server confirms.
func (a *Agent) MarkAllAsRead(ctx context.Context) error {
	if _, err := a.transport.MarkAllAsRead(ctx); err != nil {
		a.toast("Impossible de marquer les notifications comme lues", SeverityError)
		return err
	}

	a.mu.Lock()
	now := time.Now()
	for _, n := range a.notifications {
		if !n.Read() {
			readAt := now
			n.ReadAt = &readAt
		}
	}
	a.setUnreadLocked(0)
	a.mu.Unlock()
	return nil
}

// BulkMarkAsRead marks the current selection as read. The success toast
// reports the server's effective count, not the selection size, since some
// selected notifications may already be read.
func (a *Agent) BulkMarkAsRead(ctx context.Context) error {
	ids := a.selectedIDs()
	if len(ids) == 0 {
		a.toast("Aucune notification sélectionnée", SeverityWarning)
		return nil
	}

	count, err := a.transport.BulkMarkAsRead(ctx, ids)
	if err != nil {
		a.toast("Impossible de marquer les notifications comme lues", SeverityError)
		return err
	}

	a.mu.Lock()
	now := time.Now()
	for _, id := range ids {
		if n := a.find(id); n != nil && !n.Read() {
			readAt := now
			n.ReadAt = &readAt
		}
	}
	a.setUnreadLocked(a.unread - count)
	a.selection.Clear()
	a.mu.Unlock()

	a.toast(countWording(count, "notification marquée comme lue", "notifications marquées comme lues"), SeveritySuccess)
	return nil
}

// BulkDelete deletes the current selection after user confirmation.
func (a *Agent) BulkDelete(ctx context.Context) error {
	ids := a.selectedIDs()
	if len(ids) == 0 {
		a.toast("Aucune notification sélectionnée", SeverityWarning)
		return nil
	}
	if a.confirm != nil && !a.confirm.Confirm("Supprimer les notifications sélectionnées ?") {
		return nil
	}

	count, err := a.transport.BulkDelete(ctx, ids)
	if err != nil {
		a.toast("Impossible de supprimer les notifications", SeverityError)
		return err
	}

	a.mu.Lock()
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	kept := a.notifications[:0]
	for _, n := range a.notifications {
		if _, ok := selected[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	a.notifications = kept
	a.setUnreadLocked(a.unread - count)
	a.selection.Clear()
	a.mu.Unlock()

	a.toast(countWording(count, "notification supprimée", "notifications supprimées"), SeveritySuccess)
	return nil
}

// SetNotifications replaces the local list, typically after the initial
// page load.
func (a *Agent) SetNotifications(notifications []*models.Notification, unread int64) {
	a.mu.Lock()
	a.notifications = notifications
	a.setUnreadLocked(unread)
	a.mu.Unlock()
}

// Notifications returns a snapshot of the local list, newest first.
func (a *Agent) Notifications() []*models.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*models.Notification, len(a.notifications))
	copy(out, a.notifications)
	return out
}

func (a *Agent) UnreadCount() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unread
}

func (a *Agent) Selection() *SelectionSet {
	return a.selection
}

func (a *Agent) selectedIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selection.IDs()
}

// setUnreadLocked stores the counter and refreshes both badges. Callers
// hold the mutex.
func (a *Agent) setUnreadLocked(unread int64) {
	if unread < 0 {
		unread = 0
	}
	a.unread = unread
	if a.navbarBadge != nil {
		a.navbarBadge.Update(FormatBadge(unread, 99), unread)
	}
	if a.dropdownBadge != nil {
		a.dropdownBadge.Update(FormatBadge(unread, 9), unread)
	}
}

func (a *Agent) find(id string) *models.Notification {
	_, n := a.findIndexed(id)
	return n
}

func (a *Agent) findIndexed(id string) (int, *models.Notification) {
	for i, n := range a.notifications {
		if n.ID == id {
			return i, n
		}
	}
	return -1, nil
}

func (a *Agent) toast(message string, severity Severity) {
	if a.toasts != nil {
		a.toasts.Show(message, severity)
	}
}

func countWording(count int64, singular, plural string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", count, plural)
}
