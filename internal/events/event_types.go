package events

import "time"

// EventType enumerates changed-facts events emitted by lifecycle transitions.
type EventType string

const (
	EventCalloutCreated  EventType = "callout_created"
	EventCalloutEdited   EventType = "callout_edited"
	EventSROGenerated    EventType = "sro_generated"
	EventSROApproved     EventType = "sro_approved"
	EventScheduleUpdated EventType = "schedule_updated"
	EventWellCreated     EventType = "well_created"
)

// Facts names the entities whose stored or derived state changed in a
// transition. Empty fields mean the entity was not touched.
type Facts struct {
	CalloutID  string `json:"callout_id,omitempty"`
	SROID      string `json:"sro_id,omitempty"`
	ScheduleID string `json:"schedule_id,omitempty"`
	WellID     string `json:"well_id,omitempty"`

	// ScheduleCreated distinguishes an approval that created a schedule
	// from an idempotent re-approval; only the former invalidates the
	// schedule list.
	ScheduleCreated bool `json:"schedule_created,omitempty"`
}

// Event is a changed-facts notification published after a transition.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Facts     Facts     `json:"facts"`
}
