package client

import "time"

// Permission mirrors the desktop notification permission states.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDefault Permission = "default"
	PermissionDenied  Permission = "denied"
)

// DesktopNotification is one system-level notification. The tag is the
// notification id, so a re-show with the same tag replaces the previous
// one instead of stacking.
type DesktopNotification struct {
	Tag                string
	Title              string
	Body               string
	RequireInteraction bool
}

// DesktopNotifier abstracts the platform notification surface.
type DesktopNotifier interface {
	Permission() Permission
	// RequestPermission prompts the user and returns the outcome.
	RequestPermission() Permission
	Show(notification DesktopNotification)
	Close(tag string)
}

const desktopAutoClose = 10 * time.Second

// showDesktop applies the permission gate and urgency rules: granted shows
// directly, default prompts once and shows on grant, denied stays silent.
// Urgent notifications require interaction and never auto-close; the rest
// close themselves after the auto-close delay.
func showDesktop(notifier DesktopNotifier, id, title, body string, urgent bool, after func(d time.Duration, f func()) *time.Timer) {
	if notifier == nil {
		return
	}

	permission := notifier.Permission()
	if permission == PermissionDefault {
		permission = notifier.RequestPermission()
	}
	if permission != PermissionGranted {
		return
	}

	notifier.Show(DesktopNotification{
		Tag:                id,
		Title:              title,
		Body:               body,
		RequireInteraction: urgent,
	})

	if !urgent {
		after(desktopAutoClose, func() {
			notifier.Close(id)
		})
	}
}
