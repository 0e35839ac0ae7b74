package domain

import "time"

// Employee is the staff member assigned to an appointment.
type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Profession string    `json:"profession,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}
