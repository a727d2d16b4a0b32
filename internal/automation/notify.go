package automation

import "log"

// Notifier delivers user-visible notifications. Delivery is
// fire-and-forget; implementations must not block.
type Notifier interface {
	Notify(id, title, body string)
	RequestPermission() bool
}

// LogNotifier writes notifications to a logger. It is the terminal
// stand-in for a platform notification center.
type LogNotifier struct {
	Logger  *log.Logger
	Enabled bool
}

func (n *LogNotifier) Notify(id, title, body string) {
	if !n.Enabled || n.Logger == nil {
		return
	}
	n.Logger.Printf("notify %s: %s: %s", id, title, body)
}

func (n *LogNotifier) RequestPermission() bool {
	n.Enabled = true
	return true
}

// Notification is one delivered message, as recorded by a Recorder.
type Notification struct {
	ID, Title, Body string
}

// Recorder keeps every notification it receives. The TUI drains it to
// show banners.
type Recorder struct {
	Sent []Notification
}

func (r *Recorder) Notify(id, title, body string) {
	r.Sent = append(r.Sent, Notification{ID: id, Title: title, Body: body})
}

func (r *Recorder) RequestPermission() bool { return true }

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []Notification {
	out := r.Sent
	r.Sent = nil
	return out
}

// Multi fans out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(id, title, body string) {
	for _, n := range m {
		n.Notify(id, title, body)
	}
}

func (m Multi) RequestPermission() bool {
	ok := true
	for _, n := range m {
		ok = n.RequestPermission() && ok
	}
	return ok
}
