// internal/app/system/notify/notify.go
package notify

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/modconsole/internal/app/system/htmlsanitize"
)

// Color selects the toast style.
type Color string

const (
	Success Color = "success"
	Error   Color = "error"
	Warning Color = "warning"
	Info    Color = "info"
)

// DefaultTimeout is how long a toast stays visible when none is given.
const DefaultTimeout = 4 * time.Second

// maxQueued bounds a session's pending toasts; older ones are dropped first.
const maxQueued = 20

// Notification is one fire-and-forget toast.
type Notification struct {
	Message string
	Color   Color
	Timeout time.Duration
	Icon    string
}

// TimeoutMS is the timeout in milliseconds, for the data attribute the
// toast script reads.
func (n Notification) TimeoutMS() int64 {
	return n.Timeout.Milliseconds()
}

// Notifier accepts notifications. Implementations must not block.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

var icons = map[Color]string{
	Success: "check_circle",
	Error:   "error",
	Warning: "warning",
	Info:    "info",
}

// New builds a notification with the default timeout and the icon for color.
func New(color Color, message string) Notification {
	return Notification{Message: message, Color: color, Timeout: DefaultTimeout, Icon: icons[color]}
}

// publicMessager is implemented by errors that carry text safe to show an
// admin, such as backend API errors.
type publicMessager interface {
	PublicMessage() string
}

// MessageFrom returns the collaborator-supplied message carried by err, or
// fallback when there is none.
func MessageFrom(err error, fallback string) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := strings.TrimSpace(pm.PublicMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

// Queue is a per-session Notifier. Notifications wait in the queue until the
// next page render drains them into toasts.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue returns an empty queue.
func NewQueue() *Queue { return &Queue{} }

// Notify enqueues n after stripping markup from its message and filling
// defaults.
func (q *Queue) Notify(n Notification) {
	n.Message = htmlsanitize.Text(n.Message)
	if n.Message == "" {
		return
	}
	if n.Color == "" {
		n.Color = Info
	}
	if n.Timeout <= 0 {
		n.Timeout = DefaultTimeout
	}
	if n.Icon == "" {
		n.Icon = icons[n.Color]
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if over := len(q.items) - maxQueued; over > 0 {
		q.items = append([]Notification(nil), q.items[over:]...)
	}
}

// Drain returns and removes every queued notification, oldest first.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len reports how many notifications are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
