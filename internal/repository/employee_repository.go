package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

type employeeRepository struct {
	db DB
}

// NewEmployeeRepository returns a Postgres-backed implementation.
func NewEmployeeRepository(db DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (id, name, profession, active)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	if err := r.db.QueryRow(ctx, query,
		employee.ID,
		employee.Name,
		employee.Profession,
		employee.Active,
	).Scan(&employee.CreatedAt); err != nil {
		return oops.Code("EMPLOYEE_CREATE_FAILED").
			With("operation", "insert employee").
			With("employee_id", employee.ID).
			Wrap(err)
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	const query = `
        SELECT id, name, profession, active, created_at
        FROM employees WHERE id=$1`

	var e domain.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.Profession, &e.Active, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return nil, oops.Code("EMPLOYEE_NOT_FOUND").With("employee_id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EMPLOYEE_LOOKUP_FAILED").With("employee_id", id).Wrap(err)
	}
	return &e, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	const query = `
        SELECT id, name, profession, active, created_at
        FROM employees ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, oops.Code("EMPLOYEE_LIST_FAILED").With("operation", "list employees").Wrap(err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0)
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Profession, &e.Active, &e.CreatedAt); err != nil {
			return nil, oops.Code("EMPLOYEE_SCAN_FAILED").Wrap(err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EMPLOYEE_LIST_FAILED").Wrap(err)
	}
	return employees, nil
}
