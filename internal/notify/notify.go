// Package notify carries transient user-facing messages (toasts) out of the
// sync layer. A notification is never an error return: it is the only way a
// remote failure reaches the user.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

func Success(n Notifier, msg string) {
	if n == nil || msg == "" {
		return
	}
	n.Notify(Notification{Level: LevelSuccess, Message: msg, At: time.Now()})
}

func Error(n Notifier, msg string) {
	if n == nil || msg == "" {
		return
	}
	n.Notify(Notification{Level: LevelError, Message: msg, At: time.Now()})
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Errors() []Notification {
	return r.byLevel(LevelError)
}

func (r *Recorder) Successes() []Notification {
	return r.byLevel(LevelSuccess)
}

// Drain returns the recorded notifications and clears the recorder.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

func (r *Recorder) byLevel(l Level) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.items {
		if n.Level == l {
			out = append(out, n)
		}
	}
	return out
}

// Log writes notifications to a zap logger.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(n Notification) {
	if n.Level == LevelError {
		l.logger.Warn("notification", zap.String("level", string(n.Level)), zap.String("message", n.Message))
		return
	}
	l.logger.Info("notification", zap.String("level", string(n.Level)), zap.String("message", n.Message))
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(n)
		}
	}
}
