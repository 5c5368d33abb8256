package journal

import (
	"context"
	"time"
)

// Event types recorded during a simulation run.
const (
	TypeRunStarted  = "run_started"
	TypeTrade       = "trade"
	TypeRunFinished = "run_finished"
	TypeError       = "error"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time
	Type        string
	Description string
	Data        map[string]any
}

// Journaler interface for journaling events.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}
