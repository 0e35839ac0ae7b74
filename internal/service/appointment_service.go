package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/validation"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// Layouts accepted for visit_at without an offset; they are read in the reference zone.
var localVisitLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// AppointmentInput is the writable part of an appointment.
type AppointmentInput struct {
	VisitAt    string
	EmployeeID string
	OwnerID    string
	Vaccines   json.RawMessage
}

// AppointmentService schedules visits and partitions them around the current instant.
type AppointmentService struct {
	repo       repository.AppointmentRepository
	dispatcher events.Dispatcher
	clock      Clock
	loc        *time.Location
	logger     *zap.Logger
}

// NewAppointmentService builds the service. loc is the reference zone used to read "now" and
// zone-less visit times.
func NewAppointmentService(repo repository.AppointmentRepository, dispatcher events.Dispatcher, clock Clock, loc *time.Location, logger *zap.Logger) *AppointmentService {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{repo: repo, dispatcher: dispatcher, clock: clock, loc: loc, logger: logger}
}

// Location returns the reference zone.
func (s *AppointmentService) Location() *time.Location {
	return s.loc
}

// Now returns the clock's instant in the reference zone.
func (s *AppointmentService) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// FutureFor lists ownerID's appointments with visit_at >= now.
func (s *AppointmentService) FutureFor(ctx context.Context, ownerID string, now time.Time) ([]domain.Appointment, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListUpcoming(ctx, ownerID, now)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("appointment store", err)
	}
	return s.render(list), nil
}

// PastFor lists ownerID's appointments with visit_at < now.
func (s *AppointmentService) PastFor(ctx context.Context, ownerID string, now time.Time) ([]domain.Appointment, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListPast(ctx, ownerID, now)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("appointment store", err)
	}
	return s.render(list), nil
}

// List returns every appointment with its employee and owner.
func (s *AppointmentService) List(ctx context.Context) ([]domain.AppointmentDetail, error) {
	list, err := s.repo.ListDetailed(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("appointment store", err)
	}
	for i := range list {
		list[i].Appointment = *s.renderOne(&list[i].Appointment)
	}
	return list, nil
}

// Future is FutureFor at the current instant.
func (s *AppointmentService) Future(ctx context.Context, ownerID string) ([]domain.Appointment, error) {
	return s.FutureFor(ctx, ownerID, s.Now())
}

// Past is PastFor at the current instant.
func (s *AppointmentService) Past(ctx context.Context, ownerID string) ([]domain.Appointment, error) {
	return s.PastFor(ctx, ownerID, s.Now())
}

// Create schedules a new appointment.
func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) (*domain.Appointment, error) {
	appt, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, appointmentError(err)
	}
	s.publish(ctx, events.EventAppointmentScheduled, appt)
	return s.renderOne(appt), nil
}

// Get loads one appointment.
func (s *AppointmentService) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appointmentError(err)
	}
	return s.renderOne(appt), nil
}

// Update replaces every writable field of appointment id.
func (s *AppointmentService) Update(ctx context.Context, id string, in AppointmentInput) (*domain.Appointment, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	appt, err := s.build(in)
	if err != nil {
		return nil, err
	}
	appt.ID = current.ID
	appt.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, appointmentError(err)
	}
	s.publish(ctx, events.EventAppointmentUpdated, appt)
	return s.renderOne(appt), nil
}

// Delete cancels appointment id.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appointmentError(err)
	}
	s.publish(ctx, events.EventAppointmentCancelled, appt)
	return nil
}

func (s *AppointmentService) build(in AppointmentInput) (*domain.Appointment, error) {
	errs := validation.Check(
		validation.Field{Name: "visit_at", Value: in.VisitAt, Rules: []validation.Rule{validation.Required()}},
		validation.Field{Name: "employee_id", Value: in.EmployeeID, Rules: []validation.Rule{validation.Required(), uuidRule}},
		validation.Field{Name: "owner_id", Value: in.OwnerID, Rules: []validation.Rule{validation.Required(), uuidRule}},
	)

	var visitAt time.Time
	if _, failed := errs["visit_at"]; !failed {
		t, ok := s.parseVisitAt(in.VisitAt)
		if !ok {
			errs.Add("visit_at", "must be a valid date and time")
		}
		visitAt = t
	}

	vaccines, err := DecodeVaccines(in.Vaccines)
	if err != nil {
		de := apperrors.ToDomainError(err)
		if de.Kind != apperrors.KindValidation {
			return nil, err
		}
		for field, msgs := range de.Details {
			if list, ok := msgs.([]string); ok {
				errs[field] = append(errs[field], list...)
			}
		}
	}
	if len(errs) > 0 {
		return nil, apperrors.NewValidationError("request validation failed", errs.Details())
	}

	return &domain.Appointment{
		VisitAt:    visitAt.UTC(),
		EmployeeID: strings.TrimSpace(in.EmployeeID),
		OwnerID:    strings.TrimSpace(in.OwnerID),
		Vaccines:   vaccines,
	}, nil
}

func (s *AppointmentService) parseVisitAt(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range localVisitLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *AppointmentService) render(list []domain.Appointment) []domain.Appointment {
	out := make([]domain.Appointment, len(list))
	for i := range list {
		out[i] = *s.renderOne(&list[i])
	}
	return out
}

func (s *AppointmentService) renderOne(appt *domain.Appointment) *domain.Appointment {
	copied := *appt
	copied.VisitAt = appt.VisitAt.In(s.loc)
	copied.CreatedAt = appt.CreatedAt.In(s.loc)
	copied.UpdatedAt = appt.UpdatedAt.In(s.loc)
	return &copied
}

func (s *AppointmentService) publish(ctx context.Context, eventType events.EventType, appt *domain.Appointment) {
	publish(ctx, s.dispatcher, s.logger, events.New(eventType, "", s.clock.Now().UTC(), events.AppointmentPayload{
		AppointmentID: appt.ID,
		OwnerID:       appt.OwnerID,
		EmployeeID:    appt.EmployeeID,
		VisitAt:       appt.VisitAt,
	}))
}

func uuidRule(value string) string {
	if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
		return "must be a valid id"
	}
	return ""
}

func validateOwner(ownerID string) error {
	return validation.Validate(validation.Field{Name: "owner_id", Value: ownerID, Rules: []validation.Rule{
		validation.Required(),
		uuidRule,
	}})
}

func appointmentError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("appointment", nil)
	case errors.Is(err, repository.ErrReferenceMissing):
		return apperrors.NewValidationError("request validation failed", map[string]any{
			"references": []string{"employee_id or owner_id does not exist"},
		})
	default:
		return apperrors.NewDependencyFailure("appointment store", err)
	}
}
