package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

type appointmentFixture struct {
	*fixture
	appointments *service.AppointmentService
	employees    *service.EmployeeService
	loc          *time.Location
	ownerID      string
	employeeID   string
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	f := newFixture(t, fixtureOptions{})
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	f.register(t, testIdentifier, testEmail)
	owner, err := f.store.People().GetByEmail(context.Background(), testEmail)
	require.NoError(t, err)

	employees := service.NewEmployeeService(f.store.Employees())
	employee, err := employees.Create(context.Background(), service.EmployeeInput{Name: "Dr. Lima", Profession: "nurse"})
	require.NoError(t, err)

	return &appointmentFixture{
		fixture:      f,
		appointments: service.NewAppointmentService(f.store.Appointments(), f.dispatcher, f.clock, loc, zap.NewNop()),
		employees:    employees,
		loc:          loc,
		ownerID:      owner.ID,
		employeeID:   employee.ID,
	}
}

func (f *appointmentFixture) schedule(t *testing.T, visitAt string) *domain.Appointment {
	t.Helper()
	appt, err := f.appointments.Create(context.Background(), service.AppointmentInput{
		VisitAt:    visitAt,
		EmployeeID: f.employeeID,
		OwnerID:    f.ownerID,
	})
	require.NoError(t, err)
	return appt
}

func TestPartitionBoundary(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, f.loc)

	atNow := f.schedule(t, now.Format(time.RFC3339))
	justBefore := f.schedule(t, now.Add(-time.Second).Format(time.RFC3339))

	future, err := f.appointments.FutureFor(ctx, f.ownerID, now)
	require.NoError(t, err)
	past, err := f.appointments.PastFor(ctx, f.ownerID, now)
	require.NoError(t, err)

	require.Len(t, future, 1)
	assert.Equal(t, atNow.ID, future[0].ID)
	require.Len(t, past, 1)
	assert.Equal(t, justBefore.ID, past[0].ID)
}

func TestPartitionSaoPauloScenario(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	january := f.schedule(t, "2024-01-01T10:00")
	march := f.schedule(t, "2024-03-01T10:00")

	f.clock.Set(time.Date(2024, 2, 1, 0, 0, 0, 0, f.loc))

	future, err := f.appointments.Future(ctx, f.ownerID)
	require.NoError(t, err)
	past, err := f.appointments.Past(ctx, f.ownerID)
	require.NoError(t, err)

	require.Len(t, future, 1)
	assert.Equal(t, march.ID, future[0].ID)
	assert.Equal(t, "2024-03-01T10:00:00-03:00", future[0].VisitAt.Format(time.RFC3339))
	require.Len(t, past, 1)
	assert.Equal(t, january.ID, past[0].ID)
	assert.Equal(t, f.loc, past[0].VisitAt.Location())
}

func TestPartitionOrdering(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	f.schedule(t, "2024-05-01T09:00")
	f.schedule(t, "2024-04-01T09:00")
	f.schedule(t, "2024-04-01T09:00")

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, f.loc)
	first, err := f.appointments.FutureFor(ctx, f.ownerID, now)
	require.NoError(t, err)
	second, err := f.appointments.FutureFor(ctx, f.ownerID, now)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.True(t, first[0].VisitAt.Equal(first[1].VisitAt))
	assert.Less(t, first[0].ID, first[1].ID)
	assert.True(t, first[2].VisitAt.After(first[1].VisitAt))
}

func TestPartitionRejectsMalformedOwner(t *testing.T) {
	f := newAppointmentFixture(t)
	_, err := f.appointments.Future(context.Background(), "not-a-uuid")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		input  service.AppointmentInput
		fields []string
	}{
		{
			name:   "everything missing",
			input:  service.AppointmentInput{},
			fields: []string{"visit_at", "employee_id", "owner_id"},
		},
		{
			name:   "bad date",
			input:  service.AppointmentInput{VisitAt: "tomorrow", EmployeeID: f.employeeID, OwnerID: f.ownerID},
			fields: []string{"visit_at"},
		},
		{
			name: "bad vaccines",
			input: service.AppointmentInput{
				VisitAt:    "2024-04-01T09:00",
				EmployeeID: f.employeeID,
				OwnerID:    f.ownerID,
				Vaccines:   json.RawMessage(`[{"name":"flu"}]`),
			},
			fields: []string{"vaccines"},
		},
		{
			name: "unknown employee",
			input: service.AppointmentInput{
				VisitAt:    "2024-04-01T09:00",
				EmployeeID: "00000000-0000-0000-0000-000000000001",
				OwnerID:    f.ownerID,
			},
			fields: []string{"references"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.appointments.Create(ctx, tc.input)
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
			for _, field := range tc.fields {
				assert.Contains(t, de.Details, field)
			}
		})
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	var published []events.EventType
	for _, et := range []events.EventType{events.EventAppointmentScheduled, events.EventAppointmentUpdated, events.EventAppointmentCancelled} {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			published = append(published, e.Type)
			return nil
		})
	}

	created, err := f.appointments.Create(ctx, service.AppointmentInput{
		VisitAt:    "2024-04-01 09:30:00",
		EmployeeID: f.employeeID,
		OwnerID:    f.ownerID,
		Vaccines:   json.RawMessage(`[{"vaccine_id":"flu-2024","dose":1}]`),
	})
	require.NoError(t, err)
	require.Len(t, created.Vaccines, 1)
	assert.Equal(t, "flu-2024", created.Vaccines[0].VaccineID)
	assert.True(t, created.VisitAt.Equal(time.Date(2024, 4, 1, 12, 30, 0, 0, time.UTC)))

	updated, err := f.appointments.Update(ctx, created.ID, service.AppointmentInput{
		VisitAt:    "2024-04-02T09:30:00-03:00",
		EmployeeID: f.employeeID,
		OwnerID:    f.ownerID,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Vaccines)

	got, err := f.appointments.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.VisitAt.Day())

	all, err := f.appointments.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Equal(t, f.employeeID, all[0].Employee.ID)
	assert.Equal(t, f.ownerID, all[0].Owner.ID)
	assert.Equal(t, "America/Sao_Paulo", all[0].VisitAt.Location().String())

	require.NoError(t, f.appointments.Delete(ctx, created.ID))
	_, err = f.appointments.Get(ctx, created.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	err = f.appointments.Delete(ctx, created.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	assert.Equal(t, []events.EventType{
		events.EventAppointmentScheduled,
		events.EventAppointmentUpdated,
		events.EventAppointmentCancelled,
	}, published)
}

func TestEmployeeService(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	_, err := f.employees.Create(ctx, service.EmployeeInput{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	list, err := f.employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Active)

	got, err := f.employees.Get(ctx, f.employeeID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Lima", got.Name)

	_, err = f.employees.Get(ctx, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
