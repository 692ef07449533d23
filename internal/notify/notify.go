// Package notify carries the outcome of store operations to the user as
// short toast messages.
package notify

import (
	"sync"

	"github.com/google/logger"
)

// Level is the severity of a toast.
type Level string

const (
	Success Level = "success"
	Failure Level = "error"
)

// Toast is one transient message.
type Toast struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Sink receives toasts.
type Sink interface {
	Notify(t Toast)
}

// Ok builds a success toast.
func Ok(msg string) Toast { return Toast{Level: Success, Message: msg} }

// Fail builds a failure toast.
func Fail(msg string) Toast { return Toast{Level: Failure, Message: msg} }

// LogSink writes toasts to the process log.
type LogSink struct{}

func (LogSink) Notify(t Toast) {
	if t.Level == Failure {
		logger.Errorf("toast: %s", t.Message)
		return
	}
	logger.Infof("toast: %s", t.Message)
}

// Multi fans a toast out to several sinks.
type Multi []Sink

func (m Multi) Notify(t Toast) {
	for _, s := range m {
		if s != nil {
			s.Notify(t)
		}
	}
}

// Recorder keeps every toast it receives.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of what has been recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Last returns the most recent toast, if any.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}
