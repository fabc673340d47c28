package domain

// Broadcast subjects emitted after each successful mutation.
const (
	SubjEventCreated    = "eventCreated"
	SubjEventUpdated    = "eventUpdated"
	SubjEventDeleted    = "eventDeleted"
	SubjAttendeeUpdated = "attendeeUpdated"
)

// Broadcaster fans a notification out to every currently connected
// observer. Delivery is fire-and-forget: no replay for late subscribers,
// no acknowledgment, no retry. Publish must not block the caller.
//
// The event service takes a Broadcaster at construction time; it is an
// explicit dependency, never ambient request state.
type Broadcaster interface {
	Publish(subject string, payload any)
}

// NopBroadcaster discards every notification. Useful in tests and when
// running without the websocket endpoint.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, any) {}
