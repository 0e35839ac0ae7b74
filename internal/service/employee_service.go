package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/validation"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// EmployeeInput carries the fields accepted when registering an employee.
type EmployeeInput struct {
	Name       string
	Profession string
}

// EmployeeService manages the staff that appointments are assigned to.
type EmployeeService struct {
	repo repository.EmployeeRepository
}

// NewEmployeeService creates an EmployeeService backed by repo.
func NewEmployeeService(repo repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// Create validates in and registers an active employee.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (*domain.Employee, error) {
	if err := validation.Validate(
		validation.Field{Name: "name", Value: in.Name, Rules: []validation.Rule{validation.Required(), validation.MaxLength(255)}},
		validation.Field{Name: "profession", Value: in.Profession, Optional: true, Rules: []validation.Rule{validation.MaxLength(100)}},
	); err != nil {
		return nil, err
	}
	employee := &domain.Employee{
		Name:       strings.TrimSpace(in.Name),
		Profession: strings.TrimSpace(in.Profession),
		Active:     true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, apperrors.NewDependencyFailure("employee store", err)
	}
	return employee, nil
}

// Get returns the employee with id. Malformed or unknown ids are NOT_FOUND.
func (s *EmployeeService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("employee", nil)
	}
	employee, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("employee", nil)
	}
	if err != nil {
		return nil, apperrors.NewDependencyFailure("employee store", err)
	}
	return employee, nil
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("employee store", err)
	}
	return list, nil
}
