package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/domain"
)

var appointmentCols = []string{"id", "visit_at", "employee_id", "owner_id", "vaccines", "created_at", "updated_at"}

func TestAppointmentRepository_Create(t *testing.T) {
	visit := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	t.Run("stores manifest as json", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO appointments`).
			WithArgs(pgxmock.AnyArg(), visit, "emp-1", "owner-1", []byte(`[{"vaccine_id":"bcg","dose":1}]`)).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		appt := &domain.Appointment{
			VisitAt:    visit,
			EmployeeID: "emp-1",
			OwnerID:    "owner-1",
			Vaccines:   []domain.VaccineDose{{VaccineID: "bcg", Dose: 1}},
		}
		require.NoError(t, NewAppointmentRepository(mock).Create(context.Background(), appt))
		assert.NotEmpty(t, appt.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown employee", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO appointments`).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

		err = NewAppointmentRepository(mock).Create(context.Background(),
			&domain.Appointment{VisitAt: visit, EmployeeID: "ghost", OwnerID: "owner-1"})
		assert.ErrorIs(t, err, ErrReferenceMissing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAppointmentRepository_Partitions(t *testing.T) {
	now := time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)
	jan := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`visit_at >= \$2`).
		WithArgs("owner-1", now).
		WillReturnRows(pgxmock.NewRows(appointmentCols).
			AddRow("a-mar", mar, "emp-1", "owner-1", []byte(`[{"vaccine_id":"flu"}]`), now, now))
	mock.ExpectQuery(`visit_at < \$2`).
		WithArgs("owner-1", now).
		WillReturnRows(pgxmock.NewRows(appointmentCols).
			AddRow("a-jan", jan, "emp-1", "owner-1", []byte(nil), now, now))

	repo := NewAppointmentRepository(mock)

	upcoming, err := repo.ListUpcoming(context.Background(), "owner-1", now)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "a-mar", upcoming[0].ID)
	assert.Equal(t, []domain.VaccineDose{{VaccineID: "flu"}}, upcoming[0].Vaccines)

	past, err := repo.ListPast(context.Background(), "owner-1", now)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "a-jan", past[0].ID)
	assert.Nil(t, past[0].Vaccines)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_UpdateDelete(t *testing.T) {
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`UPDATE appointments SET visit_at`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}))
	mock.ExpectExec(`DELETE FROM appointments`).
		WithArgs("a-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM appointments`).
		WithArgs("a-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewAppointmentRepository(mock)
	err = repo.Update(context.Background(), &domain.Appointment{ID: "missing", VisitAt: now, EmployeeID: "e", OwnerID: "o"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(context.Background(), "a-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "a-1"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_ListDetailed(t *testing.T) {
	visit := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := append(append([]string{}, appointmentCols...), "employee_name", "profession", "active", "owner_name", "email")
	mock.ExpectQuery(`JOIN employees e ON e.id = a.employee_id`).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("a-1", visit, "emp-1", "owner-1", []byte(`[{"vaccine_id":"flu"}]`), now, now,
				"Dr. Ana", "veterinarian", true, "Bia", "bia@example.com"))

	list, err := NewAppointmentRepository(mock).ListDetailed(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a-1", list[0].ID)
	assert.Equal(t, []domain.VaccineDose{{VaccineID: "flu"}}, list[0].Vaccines)
	assert.Equal(t, domain.Employee{ID: "emp-1", Name: "Dr. Ana", Profession: "veterinarian", Active: true}, list[0].Employee)
	assert.Equal(t, "owner-1", list[0].Owner.ID)
	assert.Equal(t, "Bia", list[0].Owner.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}
