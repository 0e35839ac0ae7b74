package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
)

type credentials struct{ s *Store }

func (r *credentials) Create(_ context.Context, cred *domain.Credential, person *domain.Person) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.identifiers[cred.Identifier]; taken {
		return oops.Code("CREDENTIAL_CONFLICT").With("constraint", "identifier").Wrap(repository.ErrDuplicateIdentifier)
	}
	if person != nil {
		if _, taken := s.emails[emailKey(person.Email)]; taken {
			return oops.Code("CREDENTIAL_CONFLICT").With("constraint", "email").Wrap(repository.ErrDuplicateEmail)
		}
	}

	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	now := s.now().UTC()
	cred.CreatedAt, cred.UpdatedAt = now, now
	s.credentials[cred.ID] = *cred
	s.identifiers[cred.Identifier] = cred.ID

	if person != nil {
		if person.ID == "" {
			person.ID = uuid.NewString()
		}
		person.CredentialID = cred.ID
		person.CreatedAt = now
		s.people[person.ID] = *person
		s.emails[emailKey(person.Email)] = person.ID
	}
	return nil
}

func (r *credentials) GetByID(_ context.Context, id string) (*domain.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cred, ok := r.s.credentials[id]
	if !ok {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").With("credential_id", id).Wrap(repository.ErrNotFound)
	}
	return &cred, nil
}

func (r *credentials) GetByIdentifier(ctx context.Context, identifier string) (*domain.Credential, error) {
	r.s.mu.RLock()
	id, ok := r.s.identifiers[identifier]
	r.s.mu.RUnlock()
	if !ok {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").With("identifier", identifier).Wrap(repository.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *credentials) UpdateSecret(_ context.Context, id, digest string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateSecretLocked(id, digest)
}

func (s *Store) updateSecretLocked(id, digest string) error {
	cred, ok := s.credentials[id]
	if !ok {
		return oops.Code("CREDENTIAL_NOT_FOUND").With("credential_id", id).Wrap(repository.ErrNotFound)
	}
	cred.SecretDigest = digest
	cred.UpdatedAt = s.now().UTC()
	s.credentials[id] = cred
	return nil
}

type people struct{ s *Store }

func (r *people) GetByEmail(_ context.Context, email string) (*domain.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[emailKey(email)]
	if !ok {
		return nil, oops.Code("PERSON_NOT_FOUND").With("email", email).Wrap(repository.ErrNotFound)
	}
	p := r.s.people[id]
	return &p, nil
}

func (r *people) GetByCredentialID(_ context.Context, credentialID string) (*domain.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.people {
		if p.CredentialID == credentialID {
			return &p, nil
		}
	}
	return nil, oops.Code("PERSON_NOT_FOUND").With("credential_id", credentialID).Wrap(repository.ErrNotFound)
}

type employees struct{ s *Store }

func (r *employees) Create(_ context.Context, e *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = r.s.now().UTC()
	r.s.employees[e.ID] = *e
	return nil
}

func (r *employees) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok {
		return nil, oops.Code("EMPLOYEE_NOT_FOUND").With("employee_id", id).Wrap(repository.ErrNotFound)
	}
	return &e, nil
}

func (r *employees) List(_ context.Context) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]domain.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		list = append(list, e)
	}
	sortEmployees(list)
	return list, nil
}
