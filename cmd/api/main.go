// @title Event Ledger API
// @version 1.0
// @description Event write path with optimistic concurrency, a read projection and a version log.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"eventledger/config"
	_ "eventledger/docs"
	"eventledger/internal/adapters/auth"
	"eventledger/internal/adapters/email"
	"eventledger/internal/adapters/notify"
	"eventledger/internal/clock"
	"eventledger/internal/concurrency"
	httpdelivery "eventledger/internal/delivery/http"
	"eventledger/internal/delivery/http/controllers"
	"eventledger/internal/delivery/http/middleware"
	"eventledger/internal/domain"
	"eventledger/internal/id"
	"eventledger/internal/repository/sqlstore"
	"eventledger/internal/services"
	"eventledger/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTel.Endpoint,
		Enabled:     cfg.TracingEnabled(),
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown", "err", err)
		}
	}()

	db, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database ready", "driver", cfg.DBDriver)

	notifier, closeNotifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	tokens := concurrency.NewGenerator()
	writeRepo := sqlstore.NewEventWriteRepository(db, clock.Real)
	readRepo := sqlstore.NewEventReadRepository(db)
	versions := services.NewVersionLog(sqlstore.NewVersionRepository(db), id.UUID, tokens, clock.Real, logger)
	commands := services.NewEventCommandService(writeRepo, readRepo, versions, notifier, tokens, id.UUID, clock.Real, logger, cfg.RequestTimeout)
	queries := services.NewEventQueryService(readRepo, versions, cfg.RequestTimeout)

	var verifier domain.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewJWT(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, caller identity is read from query parameters")
	}

	router := httpdelivery.NewRouter(
		controllers.NewEventController(logger, commands, queries),
		controllers.NewHistoryController(logger, queries),
		middleware.Identity(verifier, logger),
	)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildNotifier assembles the EventCreated subscribers: NATS when NATS_URL is
// set and mail when EMAIL_NOTIFY_TO lists recipients.
func buildNotifier(cfg *config.Config, logger *slog.Logger) (domain.Notifier, func(), error) {
	var sinks notify.Multi
	closeFn := func() {}

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.ServiceName))
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats: %w", err)
		}
		pub, err := notify.NewNATSNotifier(nc, cfg.NATS.Subject, cfg.NATS.Codec)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		sinks = append(sinks, pub)
		closeFn = func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("nats drain", "err", err)
			}
		}
		logger.Info("publishing event notifications", "subject", cfg.NATS.Subject, "codec", cfg.NATS.Codec)
	}

	if len(cfg.Email.NotifyTo) > 0 {
		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Email.Provider,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			SES: email.SESConfig{
				Region:             cfg.Email.AWSRegion,
				AccessKeyID:        cfg.Email.AWSAccessKeyID,
				SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
				InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
			},
		}, logger)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mailer: %w", err)
		}
		sinks = append(sinks, notify.NewMailNotifier(mailer, email.NewTemplateRenderer(), cfg.Email.NotifyTo))
	}

	if len(sinks) == 0 {
		return notify.Noop{}, closeFn, nil
	}
	return sinks, closeFn, nil
}
