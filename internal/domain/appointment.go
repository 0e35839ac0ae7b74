package domain

import (
	"sort"
	"time"
)

// VaccineDose is one entry of an appointment's vaccine manifest.
type VaccineDose struct {
	VaccineID string `json:"vaccine_id" jsonschema:"required,minLength=1"`
	Name      string `json:"name,omitempty"`
	Dose      int    `json:"dose,omitempty" jsonschema:"minimum=1"`
	Notes     string `json:"notes,omitempty" jsonschema:"maxLength=500"`
}

// Appointment is a scheduled visit of an employee to an owner.
type Appointment struct {
	ID         string        `json:"id"`
	VisitAt    time.Time     `json:"visit_at"`
	EmployeeID string        `json:"employee_id"`
	OwnerID    string        `json:"owner_id"`
	Vaccines   []VaccineDose `json:"vaccines"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// AppointmentDetail is an appointment with its employee and owner loaded.
type AppointmentDetail struct {
	Appointment
	Employee Employee
	Owner    Person
}

// UpcomingAt reports whether the visit belongs to the future partition at now.
// The boundary instant counts as upcoming.
func (a *Appointment) UpcomingAt(now time.Time) bool {
	return !a.VisitAt.Before(now)
}

// SortAppointments orders by visit time, then by ID so equal instants stay deterministic.
func SortAppointments(list []Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].VisitAt.Equal(list[j].VisitAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].VisitAt.Before(list[j].VisitAt)
	})
}
