package service_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/cache"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/mail"
	"github.com/spec-kit/staffing-service/internal/repository/memory"
	"github.com/spec-kit/staffing-service/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type fixture struct {
	store       *memory.Store
	clock       *fakeClock
	outbox      *mail.Outbox
	cache       *cache.Memory
	credentials *service.CredentialStore
	sessions    *service.SessionManager
	resets      *service.ResetTokenIssuer
	auth        *service.AuthService
	dispatcher  events.Dispatcher
}

type fixtureOptions struct {
	hasher   auth.Hasher
	resetTTL time.Duration
	idleTTL  time.Duration
	store    *memory.Store
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	if opts.hasher == nil {
		hasher, err := auth.NewHasher(auth.AlgorithmBcrypt, 4)
		require.NoError(t, err)
		opts.hasher = hasher
	}
	if opts.store == nil {
		opts.store = memory.NewStore()
	}

	logger := zap.NewNop()
	clock := newFakeClock(time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
	outbox := mail.NewOutbox()
	sessionCache := cache.NewMemory(time.Minute, 100)
	dispatcher := events.NewInMemoryDispatcher()

	creds := service.NewCredentialStore(opts.store.Credentials(), opts.hasher, auth.DefaultSecretPolicy(), logger)
	sessions := service.NewSessionManager(opts.store.Sessions(), sessionCache, opts.idleTTL, clock, logger)
	resets := service.NewResetTokenIssuer(service.ResetIssuerDeps{
		Tokens:      opts.store.ResetTokens(),
		People:      opts.store.People(),
		Credentials: creds,
		Sender:      outbox,
		TTL:         opts.resetTTL,
		Clock:       clock,
		Logger:      logger,
	})
	authSvc := service.NewAuthService(service.AuthDependencies{
		Credentials: creds,
		Sessions:    sessions,
		Resets:      resets,
		Tokens:      auth.NewTokenManager("test-secret", time.Hour),
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
	})

	return &fixture{
		store:       opts.store,
		clock:       clock,
		outbox:      outbox,
		cache:       sessionCache,
		credentials: creds,
		sessions:    sessions,
		resets:      resets,
		auth:        authSvc,
		dispatcher:  dispatcher,
	}
}

const (
	testIdentifier = "12345678901"
	testSecret     = "Str0ng!Pass"
	testEmail      = "ana@example.com"
)

func (f *fixture) register(t *testing.T, identifier, email string) string {
	t.Helper()
	cred, err := f.auth.Register(context.Background(), service.RegisterInput{
		Identifier: identifier,
		Secret:     testSecret,
		Name:       "Ana",
		Email:      email,
	})
	require.NoError(t, err)
	return cred.ID
}

var tokenPattern = regexp.MustCompile(`[0-9a-f]{64}`)

// mailedToken extracts the reset token from the last message sent to address.
func (f *fixture) mailedToken(t *testing.T, address string) string {
	t.Helper()
	msg, ok := f.outbox.Last(address)
	require.True(t, ok, "no mail sent to %s", address)
	token := tokenPattern.FindString(msg.Body)
	require.NotEmpty(t, token)
	return token
}
