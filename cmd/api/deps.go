package main

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/cache"
	"github.com/spec-kit/staffing-service/internal/config"
	"github.com/spec-kit/staffing-service/internal/mail"
	"github.com/spec-kit/staffing-service/internal/persistence"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/repository/memory"
)

// stores groups the repositories behind one backend.
type stores struct {
	credentials  repository.CredentialRepository
	people       repository.PersonRepository
	employees    repository.EmployeeRepository
	sessions     repository.SessionRepository
	resetTokens  repository.ResetTokenRepository
	appointments repository.AppointmentRepository
}

// newStores uses PostgreSQL when a pool is open and process memory otherwise.
func newStores(pg *persistence.Postgres) stores {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return stores{
			credentials:  repository.NewCredentialRepository(pool),
			people:       repository.NewPersonRepository(pool),
			employees:    repository.NewEmployeeRepository(pool),
			sessions:     repository.NewSessionRepository(pool),
			resetTokens:  repository.NewResetTokenRepository(pool),
			appointments: repository.NewAppointmentRepository(pool),
		}
	}
	mem := memory.NewStore()
	return stores{
		credentials:  mem.Credentials(),
		people:       mem.People(),
		employees:    mem.Employees(),
		sessions:     mem.Sessions(),
		resetTokens:  mem.ResetTokens(),
		appointments: mem.Appointments(),
	}
}

func newSessionCache(rdb *persistence.Redis, cfg config.CacheConfig) cache.SessionCache {
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return cache.Noop{}
	}
	if rdb.Enabled() {
		return cache.NewRedis(rdb.Client, ttl)
	}
	return cache.NewMemory(ttl, 0)
}

func newMailSender(cfg config.MailConfig, logger *zap.Logger) (mail.Sender, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", "log":
		return mail.NewLogSender(logger, cfg.From), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, oops.Code("CONFIG_INVALID").Errorf("MAIL_SMTP_HOST is required in smtp mode")
		}
		return mail.NewSMTPSender(cfg), nil
	default:
		return nil, oops.Code("CONFIG_INVALID").Errorf("unknown MAIL_MODE %q", cfg.Mode)
	}
}

func runMigrations(dsn string, logger *zap.Logger) error {
	m, err := persistence.NewMigrator(dsn, logger)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck
	return m.Up()
}

func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
