// internal/app/system/notify/notify.go
//
// Package notify delivers outcome notices (the toasts and alerts a client
// shows after an action) without making the caller wait for delivery.
package notify

import "time"

// Notice kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindWarning = "warning"
	KindInfo    = "info"
)

// Notice is a single outcome message.
type Notice struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Kind    string    `json:"kind"`
	GroupID string    `json:"groupId,omitempty"`
	At      time.Time `json:"at"`
}

// Sink consumes notices on the dispatcher's worker goroutine.
type Sink interface {
	Deliver(n Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(n Notice)

func (f SinkFunc) Deliver(n Notice) { f(n) }
