package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity picks the toast accent color.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

var severityColors = map[Severity]string{
	SeveritySuccess: "#10B981",
	SeverityError:   "#EF4444",
	SeverityWarning: "#F59E0B",
	SeverityInfo:    "#3B82F6",
}

// Color returns the accent color hex for the severity; unknown severities
// fall back to the info color.
func (s Severity) Color() string {
	if color, ok := severityColors[s]; ok {
		return color
	}
	return severityColors[SeverityInfo]
}

type ToastState string

const (
	ToastVisible ToastState = "visible"
	ToastSliding ToastState = "sliding"
)

type Toast struct {
	ID       string
	Message  string
	Severity Severity
	State    ToastState
}

// ToastPresenter stacks transient messages. Each toast dismisses itself on
// its own schedule: after the visible duration it slides out, and after the
// slide duration it is removed. Toasts never affect each other's timers.
type ToastPresenter struct {
	mu     sync.Mutex
	toasts []*Toast
	timers map[string]*time.Timer

	visibleFor time.Duration
	slideFor   time.Duration
}

// NewToastPresenter uses the production timings: 3s visible, 300ms slide.
func NewToastPresenter() *ToastPresenter {
	return NewToastPresenterWithTimings(3000*time.Millisecond, 300*time.Millisecond)
}

func NewToastPresenterWithTimings(visibleFor, slideFor time.Duration) *ToastPresenter {
	return &ToastPresenter{
		timers:     make(map[string]*time.Timer),
		visibleFor: visibleFor,
		slideFor:   slideFor,
	}
}

// Show displays a toast and schedules its dismissal. The toast id is
// returned so tests and callers can dismiss early.
func (p *ToastPresenter) Show(message string, severity Severity) string {
	toast := &Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		State:    ToastVisible,
	}

	p.mu.Lock()
	p.toasts = append(p.toasts, toast)
	p.timers[toast.ID] = time.AfterFunc(p.visibleFor, func() {
		p.startSlide(toast.ID)
	})
	p.mu.Unlock()

	return toast.ID
}

func (p *ToastPresenter) Success(message string) string { return p.Show(message, SeveritySuccess) }
func (p *ToastPresenter) Error(message string) string   { return p.Show(message, SeverityError) }
func (p *ToastPresenter) Warning(message string) string { return p.Show(message, SeverityWarning) }
func (p *ToastPresenter) Info(message string) string    { return p.Show(message, SeverityInfo) }

// Dismiss slides the toast out immediately.
func (p *ToastPresenter) Dismiss(id string) {
	p.mu.Lock()
	if timer, ok := p.timers[id]; ok {
		timer.Stop()
	}
	p.mu.Unlock()
	p.startSlide(id)
}

func (p *ToastPresenter) startSlide(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, toast := range p.toasts {
		if toast.ID == id && toast.State == ToastVisible {
			toast.State = ToastSliding
			p.timers[id] = time.AfterFunc(p.slideFor, func() {
				p.remove(id)
			})
			return
		}
	}
}

func (p *ToastPresenter) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if timer, ok := p.timers[id]; ok {
		timer.Stop()
		delete(p.timers, id)
	}
	kept := p.toasts[:0]
	for _, toast := range p.toasts {
		if toast.ID != id {
			kept = append(kept, toast)
		}
	}
	p.toasts = kept
}

// Active returns the currently stacked toasts, oldest first.
func (p *ToastPresenter) Active() []Toast {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Toast, 0, len(p.toasts))
	for _, toast := range p.toasts {
		out = append(out, *toast)
	}
	return out
}
