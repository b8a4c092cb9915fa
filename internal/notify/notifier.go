package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

type Notification struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier shows one transient message at a time. Each message is dismissed
// automatically after the TTL unless a newer message replaced it first.
type Notifier struct {
	ttl      time.Duration
	now      func() time.Time
	onChange func()

	mu      sync.Mutex
	seq     uint64
	current *Notification
	timer   *time.Timer
	stopped bool
}

// New returns a Notifier. onChange, if set, is called after every show or dismiss
// without the notifier lock held.
func New(ttl time.Duration, onChange func()) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl, now: time.Now, onChange: onChange}
}

func (n *Notifier) Notify(msg string) Notification {
	n.mu.Lock()
	n.seq++
	note := Notification{ID: n.seq, Message: msg, CreatedAt: n.now()}
	n.current = &note
	if n.timer != nil {
		n.timer.Stop()
	}
	if !n.stopped {
		id := note.ID
		n.timer = time.AfterFunc(n.ttl, func() { n.expire(id) })
	}
	n.mu.Unlock()

	n.changed()
	return note
}

func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

func (n *Notifier) Dismiss() {
	n.mu.Lock()
	had := n.current != nil
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	if had {
		n.changed()
	}
}

// Stop cancels the pending dismissal. Messages shown afterwards stay until Dismiss.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	n.mu.Unlock()

	n.changed()
}

func (n *Notifier) changed() {
	if n.onChange != nil {
		n.onChange()
	}
}
