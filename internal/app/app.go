package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"mentorship-service/common/logger"
	"mentorship-service/common/telemetry"
	"mentorship-service/internal/attendance"
	"mentorship-service/internal/auth"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/config"
	"mentorship-service/internal/db"
	"mentorship-service/internal/events"
	"mentorship-service/internal/grpcserver"
	"mentorship-service/internal/health"
	"mentorship-service/internal/kafka"
	"mentorship-service/internal/mail"
	"mentorship-service/internal/mentor"
	"mentorship-service/internal/messaging"
	"mentorship-service/internal/metrics"
	"mentorship-service/internal/middleware"
	"mentorship-service/internal/ratelimit"
	"mentorship-service/internal/report"
	"mentorship-service/internal/schema"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	grpc      *grpcserver.Server
	database  *bun.DB
	redis     *redis.Client
	emitter   *events.Emitter
	authRepo  *auth.Repository
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
}

func New() *App {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)

	// Set as default logger so slog.Info() goes through the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "env", cfg.Env)

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Env:            cfg.Env,
		Endpoint:       cfg.Telemetry.Endpoint,
		Disabled:       !cfg.Telemetry.Enabled,
	}, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}

	meter := otel.Meter(ServiceName)
	domainMetrics, err := metrics.New(meter)
	if err != nil {
		log.Fatalf("failed to initialize domain metrics: %v", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := tel.Metrics.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, schema.Tables()...); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	app := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		database:  database,
		telemetry: tel,
		logger:    slogLogger,
	}

	if cfg.Redis.Addr != "" {
		app.redis = ratelimit.NewRedisClient(cfg.Redis)
	}

	app.emitter = events.NewEmitter(newPublisher(cfg, slogLogger), slogLogger, tel.Metrics)

	mailer, err := newMailer(cfg.Mail, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize mail sender: %v", err)
	}

	// Repositories
	mentorRepo := mentor.NewRepository(database, tel.Metrics)
	app.authRepo = auth.NewRepository(database, tel.Metrics)
	batchRepo := batch.NewRepository(database, tel.Metrics)
	studentRepo := student.NewRepository(database, tel.Metrics)
	sessionRepo := session.NewRepository(database, tel.Metrics)
	attendanceRepo := attendance.NewRepository(database, tel.Metrics)

	// Services
	mentorService := mentor.NewService(mentorRepo, slogLogger)
	issuer := auth.NewTokenIssuer(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
	)
	authService := auth.NewService(
		mentorRepo,
		mentorService,
		app.authRepo,
		issuer,
		mailer,
		app.emitter,
		auth.Settings{
			EmailDomain: cfg.Auth.EmailDomain,
			VerifyURL:   cfg.Auth.VerifyURL,
			RefreshTTL:  time.Duration(cfg.Auth.RefreshTTLHours) * time.Hour,
			VerifyTTL:   time.Duration(cfg.Auth.VerifyTTLHours) * time.Hour,
		},
		slogLogger,
		domainMetrics,
	)
	batchService := batch.NewService(batchRepo, slogLogger)
	studentService := student.NewService(studentRepo, app.emitter, student.Settings{
		Concurrency: cfg.Import.Concurrency,
		MaxRows:     cfg.Import.MaxRows,
	}, slogLogger, domainMetrics)
	sessionService := session.NewService(sessionRepo, slogLogger)
	attendanceService := attendance.NewService(
		attendanceRepo,
		sessionService,
		studentService,
		app.emitter,
		cfg.Import.Concurrency,
		slogLogger,
		domainMetrics,
	)
	reportService := report.NewService(studentService, sessionService, attendanceService, domainMetrics)

	// Handlers
	healthHandler := health.NewHandler(tel.Metrics, slogLogger, app.healthChecks()...)
	if err := tel.Metrics.Health.RegisterDependencies(ctx, meter, healthHandler.Names()); err != nil {
		slogLogger.Warn("failed to register dependency gauges", "error", err)
	}

	authHandler := auth.NewHandler(authService, auth.CookieOptions{
		Secure:      cfg.Auth.SecureCookie,
		SameSiteLax: cfg.Auth.SameSiteLaxCookie,
	}, slogLogger)
	mentorHandler := mentor.NewHandler(mentorService, slogLogger)
	studentHandler := student.NewHandler(studentService, cfg.Server.MaxUploadMB<<20, slogLogger)
	batchHandler := batch.NewHandler(batchService, slogLogger,
		studentHandler,
		session.NewHandler(sessionService, slogLogger),
		attendance.NewHandler(attendanceService, slogLogger),
		report.NewHandler(reportService, slogLogger),
	)

	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.RealIP)
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler.RegisterRoutes(app.router)

	app.router.Group(func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			r.Use(ratelimit.Middleware(app.authLimiter(), time.Minute, slogLogger))
		}
		authHandler.RegisterRoutes(r)
	})

	// Protected routes
	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(issuer, slogLogger))
		mentorHandler.RegisterRoutes(r)
		studentHandler.RegisterRoutes(r)
		batchHandler.RegisterRoutes(r)
	})

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	app.grpc = grpcserver.New(
		healthHandler,
		tel.Metrics,
		time.Duration(cfg.Grpc.HealthCheckIntervalS)*time.Second,
		slogLogger,
	)

	slogLogger.Info("application initialized successfully")

	return app
}

func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	switch cfg.Events.Backend {
	case "nats":
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS producer, events disabled", "error", err)
			return nil
		}
		logger.Info("NATS producer initialized", "url", cfg.NATS.URL)
		return producer
	case "kafka":
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("failed to initialize Kafka producer, events disabled", "error", err)
			return nil
		}
		logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)
		return producer
	default:
		return nil
	}
}

func newMailer(cfg config.MailConfig, logger *slog.Logger) (mail.Sender, error) {
	switch cfg.Provider {
	case "sendgrid":
		return mail.NewSendgridSender(cfg.SendgridAPIKey, cfg.FromName, cfg.FromAddress, ServiceName, logger), nil
	case "console":
		return mail.NewConsoleSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

func (a *App) healthChecks() []health.Check {
	checks := []health.Check{{
		Name: "postgres",
		Ping: a.database.PingContext,
	}}
	if a.redis != nil {
		checks = append(checks, health.Check{
			Name:     "redis",
			Ping:     func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
			Optional: true,
		})
	}
	return checks
}

// authLimiter prefers the shared Redis window and falls back to a
// per-instance token bucket while Redis is unreachable.
func (a *App) authLimiter() ratelimit.Limiter {
	rl := a.config.RateLimit
	bucket := ratelimit.NewTokenBucket(rl.Burst, rl.RequestsPerMinute)
	if a.redis == nil {
		return bucket
	}
	return &ratelimit.Fallback{
		Primary:   ratelimit.NewRedisWindow(a.redis, rl.RequestsPerMinute, time.Minute),
		Secondary: bucket,
		Logger:    a.logger,
	}
}

func (a *App) Run() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Grpc.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	go func() {
		if err := a.grpc.Serve(lis); err != nil {
			a.logger.Error("gRPC server error", "error", err)
		}
	}()

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartHealthChecks keeps the gRPC health status current and purges
// expired auth tokens until ctx is cancelled.
func (a *App) StartHealthChecks(ctx context.Context) {
	go a.grpc.Watch(ctx)

	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.authRepo.DeleteExpiredTokens(ctx); err != nil {
				a.logger.WarnContext(ctx, "failed to purge expired tokens", "error", err)
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	err := a.server.Shutdown(ctx)

	a.grpc.GracefulStop()

	if err := a.emitter.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", "error", err)
		}
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		a.logger.Error("telemetry shutdown error", "error", err)
	}
	db.Close(a.database)

	return err
}
