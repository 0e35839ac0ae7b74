package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCredentialRegistered EventType = "credential_registered"
	EventSessionStarted       EventType = "session_started"
	EventSessionEnded         EventType = "session_ended"
	EventResetRequested       EventType = "reset_requested"
	EventSecretReset          EventType = "secret_reset"
	EventSecretChanged        EventType = "secret_changed"
	EventAppointmentScheduled EventType = "appointment_scheduled"
	EventAppointmentUpdated   EventType = "appointment_updated"
	EventAppointmentCancelled EventType = "appointment_cancelled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	CredentialID string      `json:"credential_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload,omitempty"`
}

// New builds an event stamped with a fresh id.
func New(eventType EventType, credentialID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		CredentialID: credentialID,
		Timestamp:    at,
		Payload:      payload,
	}
}

// CredentialRegisteredPayload payload.
type CredentialRegisteredPayload struct {
	Role      domain.Role `json:"role"`
	HasPerson bool        `json:"has_person"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	SessionID     string `json:"session_id"`
	Reused        bool   `json:"reused"`
	OriginAddress string `json:"origin_address"`
}

// SessionEndedPayload payload.
type SessionEndedPayload struct {
	SessionID string `json:"session_id"`
}

// SecretUpdatedPayload is shared by secret_reset and secret_changed.
type SecretUpdatedPayload struct {
	Via string `json:"via"`
}

// AppointmentPayload payload.
type AppointmentPayload struct {
	AppointmentID string    `json:"appointment_id"`
	OwnerID       string    `json:"owner_id"`
	EmployeeID    string    `json:"employee_id"`
	VisitAt       time.Time `json:"visit_at"`
}
