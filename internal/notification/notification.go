// Package notification is the capability the wallet core uses to surface
// user-facing notices. Presentation (toast, alert, banner) is up to the
// host shell; the core only emits kind, title, and message.
package notification

import (
	"sync"

	"go.uber.org/zap"
)

// Kind classifies a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is one emitted notification.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier delivers notices to the user.
type Notifier interface {
	Display(kind Kind, title, message string)
}

// ZapNotifier writes notices to the structured logger. It stands in for a
// real presentation layer in headless deployments.
type ZapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier constructs a logging notifier.
func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger}
}

func (n *ZapNotifier) Display(kind Kind, title, message string) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Info("notification",
		zap.String("kind", string(kind)),
		zap.String("title", title),
		zap.String("message", message),
	)
}

// Recorder keeps every displayed notice. Used by tests and by the API
// layer to expose the most recent notice to polling clients.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Display(kind Kind, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Kind: kind, Title: title, Message: message})
}

// Notices returns a copy of everything displayed so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Tee fans a notice out to several notifiers.
type Tee []Notifier

func (t Tee) Display(kind Kind, title, message string) {
	for _, n := range t {
		n.Display(kind, title, message)
	}
}
