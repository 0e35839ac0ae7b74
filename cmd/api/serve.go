package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staffing-service/internal/api/http"
	"github.com/spec-kit/staffing-service/internal/api/http/handlers"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/config"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/observability"
	"github.com/spec-kit/staffing-service/internal/persistence"
	"github.com/spec-kit/staffing-service/internal/service"
	"github.com/spec-kit/staffing-service/internal/worker"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return oops.Code("LOGGER_INIT_FAILED").Wrap(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := runMigrations(cfg.Postgres.DSN, logger); err != nil {
			return err
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	hasher, err := auth.NewHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	sender, err := newMailSender(cfg.Mail, logger)
	if err != nil {
		return err
	}

	st := newStores(pg)
	metrics := observability.NewMetrics("staffing")
	dispatcher := events.NewInMemoryDispatcher()

	credentials := service.NewCredentialStore(st.credentials, hasher, auth.PolicyFromConfig(cfg.Auth.Secret), logger)
	sessions := service.NewSessionManager(st.sessions, newSessionCache(rdb, cfg.Cache), cfg.Auth.SessionIdleTTL(), service.SystemClock, logger)
	resets := service.NewResetTokenIssuer(service.ResetIssuerDeps{
		Tokens:      st.resetTokens,
		People:      st.people,
		Credentials: credentials,
		Sender:      sender,
		ResetURL:    cfg.Mail.ResetURL,
		TTL:         cfg.Auth.ResetTokenTTL(),
		Logger:      logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Credentials: credentials,
		Sessions:    sessions,
		Resets:      resets,
		Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	appointmentService := service.NewAppointmentService(st.appointments, dispatcher, service.SystemClock, loc, logger)
	employeeService := service.NewEmployeeService(st.employees)

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, st.people, sender, metrics, logger))

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    rdb,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Appointments:   handlers.NewAppointmentsHandler(appointmentService),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authService),
		Metrics:        metrics,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return oops.Code("HTTP_LISTEN_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := shutdownContext()
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
