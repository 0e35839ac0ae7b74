// Package memory provides in-process implementations of the repository contracts. A single
// mutex guards every table so uniqueness, foreign keys and the reset-token transaction hold
// exactly as they do in PostgreSQL.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
)

// Store is an in-memory database.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	credentials  map[string]domain.Credential
	identifiers  map[string]string
	people       map[string]domain.Person
	emails       map[string]string
	employees    map[string]domain.Employee
	sessions     map[string]domain.Session
	sessionByCrd map[string]string
	tokens       map[string]domain.ResetToken
	tokenByHash  map[string]string
	appointments map[string]domain.Appointment
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		credentials:  map[string]domain.Credential{},
		identifiers:  map[string]string{},
		people:       map[string]domain.Person{},
		emails:       map[string]string{},
		employees:    map[string]domain.Employee{},
		sessions:     map[string]domain.Session{},
		sessionByCrd: map[string]string{},
		tokens:       map[string]domain.ResetToken{},
		tokenByHash:  map[string]string{},
		appointments: map[string]domain.Appointment{},
	}
}

// Credentials returns the credential repository view.
func (s *Store) Credentials() repository.CredentialRepository { return &credentials{s} }

// People returns the person repository view.
func (s *Store) People() repository.PersonRepository { return &people{s} }

// Employees returns the employee repository view.
func (s *Store) Employees() repository.EmployeeRepository { return &employees{s} }

// Sessions returns the session repository view.
func (s *Store) Sessions() repository.SessionRepository { return &sessions{s} }

// ResetTokens returns the reset-token repository view.
func (s *Store) ResetTokens() repository.ResetTokenRepository { return &resetTokens{s} }

// Appointments returns the appointment repository view.
func (s *Store) Appointments() repository.AppointmentRepository { return &appointments{s} }

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
