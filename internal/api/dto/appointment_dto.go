package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// AppointmentRequest payload for create and update. VisitAt accepts RFC3339 or a local
// date-time read in the reference zone.
type AppointmentRequest struct {
	VisitAt    string          `json:"visit_at"`
	EmployeeID string          `json:"employee_id"`
	OwnerID    string          `json:"owner_id"`
	Vaccines   json.RawMessage `json:"vaccines"`
}

// AppointmentResponse renders an appointment.
type AppointmentResponse struct {
	ID         string               `json:"id"`
	VisitAt    time.Time            `json:"visit_at"`
	EmployeeID string               `json:"employee_id"`
	OwnerID    string               `json:"owner_id"`
	Vaccines   []domain.VaccineDose `json:"vaccines"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// NewAppointmentResponse maps an appointment.
func NewAppointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         a.ID,
		VisitAt:    a.VisitAt,
		EmployeeID: a.EmployeeID,
		OwnerID:    a.OwnerID,
		Vaccines:   a.Vaccines,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AppointmentDetailResponse renders an appointment with its employee and owner.
type AppointmentDetailResponse struct {
	AppointmentResponse
	Employee EmployeeSummary `json:"employee"`
	Owner    OwnerSummary    `json:"owner"`
}

// EmployeeSummary is the employee embedded in an appointment listing.
type EmployeeSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Profession string `json:"profession,omitempty"`
}

// OwnerSummary is the owner embedded in an appointment listing.
type OwnerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewAppointmentDetailList maps joined appointments.
func NewAppointmentDetailList(list []domain.AppointmentDetail) []AppointmentDetailResponse {
	out := make([]AppointmentDetailResponse, 0, len(list))
	for i := range list {
		d := &list[i]
		out = append(out, AppointmentDetailResponse{
			AppointmentResponse: NewAppointmentResponse(&d.Appointment),
			Employee:            EmployeeSummary{ID: d.Employee.ID, Name: d.Employee.Name, Profession: d.Employee.Profession},
			Owner:               OwnerSummary{ID: d.Owner.ID, Name: d.Owner.Name},
		})
	}
	return out
}

// NewAppointmentList maps a slice of appointments.
func NewAppointmentList(list []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		out = append(out, NewAppointmentResponse(&list[i]))
	}
	return out
}

// EmployeeRequest payload for a new employee.
type EmployeeRequest struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
}
