package hunt

// EventType classifies machine notifications.
type EventType string

const (
	EventHuntStarted   EventType = "hunt_started"
	EventHuntStopped   EventType = "hunt_stopped"
	EventLocationFound EventType = "location_found"
	EventHuntComplete  EventType = "hunt_complete"
	EventNotice        EventType = "notice"
)

// Event is pushed to subscribers on every observable state change. The
// UI layer renders these instead of reading machine internals.
type Event struct {
	Type EventType

	// SessionID identifies the play-through. Set for EventHuntStarted.
	SessionID string

	// Set for EventLocationFound.
	LocationKey  string
	LocationName string
	Fact         string
	Hint         string
	Points       int

	// Progress snapshot, set for found/complete events.
	Found       int
	Total       int
	TotalPoints int

	// Set for EventNotice.
	Notice string
}

// Subscriber receives events synchronously, in registration order, while
// the machine lock is held. Subscribers must not call back into the
// machine.
type Subscriber func(Event)
