// internal/models/event.go
package models

import "time"

type EventType string

const (
	EventSignup     EventType = "signup"
	EventUnregister EventType = "unregister"
)

// EnrollmentEvent records one successful signup or unregistration.
type EnrollmentEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}
