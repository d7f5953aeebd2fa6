package watcher

import (
	"time"
)

type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	default:
		return "unknown"
	}
}

// PendingEvent is one coalesced filesystem event awaiting the quiescence
// window. At most one pending event exists per path at a time.
type PendingEvent struct {
	Path     string
	Kind     EventKind
	QueuedAt time.Time
	Category string
}
