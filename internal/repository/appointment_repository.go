package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

const appointmentColumns = `id, visit_at, employee_id, owner_id, vaccines, created_at, updated_at`

type appointmentRepository struct {
	db DB
}

// NewAppointmentRepository returns a Postgres-backed implementation.
func NewAppointmentRepository(db DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (id, visit_at, employee_id, owner_id, vaccines)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	manifest, err := encodeVaccines(appt.Vaccines)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, query,
		appt.ID,
		appt.VisitAt,
		appt.EmployeeID,
		appt.OwnerID,
		manifest,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return appointmentWriteError(err, "insert appointment", appt)
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id=$1`

	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return nil, oops.Code("APPOINTMENT_NOT_FOUND").With("appointment_id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("APPOINTMENT_LOOKUP_FAILED").With("appointment_id", id).Wrap(err)
	}
	return appt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET visit_at=$2, employee_id=$3, owner_id=$4, vaccines=$5, updated_at=NOW()
        WHERE id=$1
        RETURNING created_at, updated_at`

	manifest, err := encodeVaccines(appt.Vaccines)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, query,
		appt.ID,
		appt.VisitAt,
		appt.EmployeeID,
		appt.OwnerID,
		manifest,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("APPOINTMENT_NOT_FOUND").With("appointment_id", appt.ID).Wrap(ErrNotFound)
	}
	if err != nil {
		return appointmentWriteError(err, "update appointment", appt)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil && !isInvalidText(err) {
		return oops.Code("APPOINTMENT_DELETE_FAILED").
			With("operation", "delete appointment").
			With("appointment_id", id).
			Wrap(err)
	}
	if err != nil || cmd.RowsAffected() == 0 {
		return oops.Code("APPOINTMENT_NOT_FOUND").With("appointment_id", id).Wrap(ErrNotFound)
	}
	return nil
}

func (r *appointmentRepository) ListDetailed(ctx context.Context) ([]domain.AppointmentDetail, error) {
	const query = `
        SELECT a.id, a.visit_at, a.employee_id, a.owner_id, a.vaccines, a.created_at, a.updated_at,
               e.name, e.profession, e.active, p.name, p.email
        FROM appointments a
        JOIN employees e ON e.id = a.employee_id
        JOIN people p ON p.id = a.owner_id
        ORDER BY a.visit_at ASC, a.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, oops.Code("APPOINTMENT_LIST_FAILED").With("operation", "list appointments").Wrap(err)
	}
	defer rows.Close()

	list := make([]domain.AppointmentDetail, 0)
	for rows.Next() {
		var (
			detail   domain.AppointmentDetail
			manifest []byte
		)
		if err := rows.Scan(
			&detail.ID,
			&detail.VisitAt,
			&detail.EmployeeID,
			&detail.OwnerID,
			&manifest,
			&detail.CreatedAt,
			&detail.UpdatedAt,
			&detail.Employee.Name,
			&detail.Employee.Profession,
			&detail.Employee.Active,
			&detail.Owner.Name,
			&detail.Owner.Email,
		); err != nil {
			return nil, oops.Code("APPOINTMENT_SCAN_FAILED").Wrap(err)
		}
		if detail.Vaccines, err = decodeVaccines(manifest); err != nil {
			return nil, oops.Code("APPOINTMENT_SCAN_FAILED").With("appointment_id", detail.ID).Wrap(err)
		}
		detail.Employee.ID = detail.EmployeeID
		detail.Owner.ID = detail.OwnerID
		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("APPOINTMENT_LIST_FAILED").Wrap(err)
	}
	return list, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, ownerID string, now time.Time) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
        FROM appointments
        WHERE owner_id=$1 AND visit_at >= $2
        ORDER BY visit_at ASC, id ASC`
	return r.list(ctx, query, ownerID, now)
}

func (r *appointmentRepository) ListPast(ctx context.Context, ownerID string, now time.Time) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
        FROM appointments
        WHERE owner_id=$1 AND visit_at < $2
        ORDER BY visit_at ASC, id ASC`
	return r.list(ctx, query, ownerID, now)
}

func (r *appointmentRepository) list(ctx context.Context, query, ownerID string, now time.Time) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, query, ownerID, now)
	if err != nil {
		return nil, oops.Code("APPOINTMENT_LIST_FAILED").
			With("owner_id", ownerID).
			With("now", now).
			Wrap(err)
	}
	defer rows.Close()

	list := make([]domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, oops.Code("APPOINTMENT_SCAN_FAILED").With("owner_id", ownerID).Wrap(err)
		}
		list = append(list, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("APPOINTMENT_LIST_FAILED").With("owner_id", ownerID).Wrap(err)
	}
	return list, nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		appt     domain.Appointment
		manifest []byte
	)
	if err := row.Scan(
		&appt.ID,
		&appt.VisitAt,
		&appt.EmployeeID,
		&appt.OwnerID,
		&manifest,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	vaccines, err := decodeVaccines(manifest)
	if err != nil {
		return nil, err
	}
	appt.Vaccines = vaccines
	return &appt, nil
}

// decodeVaccines maps SQL NULL back to a nil manifest.
func decodeVaccines(manifest []byte) ([]domain.VaccineDose, error) {
	if len(manifest) == 0 {
		return nil, nil
	}
	var doses []domain.VaccineDose
	if err := json.Unmarshal(manifest, &doses); err != nil {
		return nil, err
	}
	return doses, nil
}

// encodeVaccines stores a nil manifest as SQL NULL.
func encodeVaccines(doses []domain.VaccineDose) ([]byte, error) {
	if doses == nil {
		return nil, nil
	}
	raw, err := json.Marshal(doses)
	if err != nil {
		return nil, oops.Code("APPOINTMENT_MANIFEST_ENCODE_FAILED").Wrap(err)
	}
	return raw, nil
}

func appointmentWriteError(err error, op string, appt *domain.Appointment) error {
	if isForeignKeyViolation(err) || isInvalidText(err) {
		return oops.Code("APPOINTMENT_REFERENCE_MISSING").
			With("employee_id", appt.EmployeeID).
			With("owner_id", appt.OwnerID).
			Wrap(ErrReferenceMissing)
	}
	return oops.Code("APPOINTMENT_WRITE_FAILED").
		With("operation", op).
		With("appointment_id", appt.ID).
		Wrap(err)
}
