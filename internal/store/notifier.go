package store

import (
	"sync"

	"github.com/rs/zerolog"
)

// Notifier receives the user-facing messages store operations produce; it is
// this module's boundary for the UI's toast layer.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// Notification is one queued user-facing message.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Recorder is a Notifier that queues notifications for the next response and
// mirrors them to the log.
type Recorder struct {
	mu      sync.Mutex
	pending []Notification
	logger  zerolog.Logger
}

// NewRecorder creates a recording notifier.
func NewRecorder(logger zerolog.Logger) *Recorder {
	return &Recorder{
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (r *Recorder) Success(message string) { r.record("success", message) }
func (r *Recorder) Error(message string)   { r.record("error", message) }
func (r *Recorder) Info(message string)    { r.record("info", message) }

func (r *Recorder) record(level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = append(r.pending, Notification{Level: level, Message: message})
	r.logger.Debug().Str("level", level).Str("message", message).Msg("notification")
}

// Drain returns and clears the queued notifications.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := r.pending
	r.pending = nil
	return drained
}
