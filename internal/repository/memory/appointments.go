package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
)

type appointments struct{ s *Store }

func (r *appointments) Create(_ context.Context, appt *domain.Appointment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkReferencesLocked(appt); err != nil {
		return err
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := s.now().UTC()
	appt.CreatedAt, appt.UpdatedAt = now, now
	s.appointments[appt.ID] = cloneAppointment(*appt)
	return nil
}

func (r *appointments) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	appt, ok := r.s.appointments[id]
	if !ok {
		return nil, oops.Code("APPOINTMENT_NOT_FOUND").With("appointment_id", id).Wrap(repository.ErrNotFound)
	}
	appt = cloneAppointment(appt)
	return &appt, nil
}

func (r *appointments) Update(_ context.Context, appt *domain.Appointment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.appointments[appt.ID]
	if !ok {
		return oops.Code("APPOINTMENT_NOT_FOUND").With("appointment_id", appt.ID).Wrap(repository.ErrNotFound)
	}
	if err := s.checkReferencesLocked(appt); err != nil {
		return err
	}
	appt.CreatedAt = stored.CreatedAt
	appt.UpdatedAt = s.now().UTC()
	s.appointments[appt.ID] = cloneAppointment(*appt)
	return nil
}

func (r *appointments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[id]; !ok {
		return oops.Code("APPOINTMENT_NOT_FOUND").With("appointment_id", id).Wrap(repository.ErrNotFound)
	}
	delete(r.s.appointments, id)
	return nil
}

func (r *appointments) ListDetailed(_ context.Context) ([]domain.AppointmentDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]domain.Appointment, 0, len(r.s.appointments))
	for _, appt := range r.s.appointments {
		list = append(list, cloneAppointment(appt))
	}
	domain.SortAppointments(list)

	out := make([]domain.AppointmentDetail, 0, len(list))
	for _, appt := range list {
		out = append(out, domain.AppointmentDetail{
			Appointment: appt,
			Employee:    r.s.employees[appt.EmployeeID],
			Owner:       r.s.people[appt.OwnerID],
		})
	}
	return out, nil
}

func (r *appointments) ListUpcoming(_ context.Context, ownerID string, now time.Time) ([]domain.Appointment, error) {
	return r.list(ownerID, func(a *domain.Appointment) bool { return a.UpcomingAt(now) }), nil
}

func (r *appointments) ListPast(_ context.Context, ownerID string, now time.Time) ([]domain.Appointment, error) {
	return r.list(ownerID, func(a *domain.Appointment) bool { return !a.UpcomingAt(now) }), nil
}

func (r *appointments) list(ownerID string, keep func(*domain.Appointment) bool) []domain.Appointment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]domain.Appointment, 0)
	for _, appt := range r.s.appointments {
		if appt.OwnerID == ownerID && keep(&appt) {
			list = append(list, cloneAppointment(appt))
		}
	}
	domain.SortAppointments(list)
	return list
}

func (s *Store) checkReferencesLocked(appt *domain.Appointment) error {
	_, ownerOK := s.people[appt.OwnerID]
	_, employeeOK := s.employees[appt.EmployeeID]
	if ownerOK && employeeOK {
		return nil
	}
	return oops.Code("APPOINTMENT_REFERENCE_MISSING").
		With("employee_id", appt.EmployeeID).
		With("owner_id", appt.OwnerID).
		Wrap(repository.ErrReferenceMissing)
}

func cloneAppointment(a domain.Appointment) domain.Appointment {
	if a.Vaccines != nil {
		a.Vaccines = append([]domain.VaccineDose(nil), a.Vaccines...)
	}
	return a
}

func sortEmployees(list []domain.Employee) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
}
