package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/ttbackend/apiserver/config"
	"github.com/ttbackend/apiserver/internal/auth"
	"github.com/ttbackend/apiserver/internal/db"
	"github.com/ttbackend/apiserver/internal/handlers"
	"github.com/ttbackend/apiserver/internal/logging"
	"github.com/ttbackend/apiserver/internal/mq"
	"github.com/ttbackend/apiserver/internal/security"
	"github.com/ttbackend/apiserver/internal/services"
	"github.com/ttbackend/apiserver/internal/store"
	"github.com/ttbackend/apiserver/internal/throttle"
)

const (
	eventQueueSize      = 256
	eventPublishTimeout = 2 * time.Second
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	mq         *mq.MQ
	events     *services.EventQueue
	logger     *logging.Logger
}

// New validates cfg, connects the database and optional Redis and broker,
// and builds the router.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	hasher, err := security.NewHasher(cfg.Security)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(cfg.Security.JWTSecret, cfg.Security.AccessTokenTTL, cfg.Security.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Server{db: dbConn, logger: logger}

	var limiter throttle.Limiter
	var events services.SecurityEvents

	if cfg.Redis.URL != "" {
		client, err := throttle.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = client
		redisLimiter, err := throttle.NewRedisLimiter(client, cfg.Redis.LoginMaxAttempts, cfg.Redis.LoginAttemptWindow)
		if err != nil {
			s.close()
			return nil, err
		}
		limiter = redisLimiter
		logger.Info("login throttle enabled",
			"max_attempts", cfg.Redis.LoginMaxAttempts,
			"window", cfg.Redis.LoginAttemptWindow,
		)
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("connect mq: %w", err)
	}
	if broker != nil {
		s.mq = broker
		s.events = services.NewEventQueue(
			mq.NewEventPublisher(broker, cfg.MQ.SecurityEventsChannel),
			eventQueueSize,
			eventPublishTimeout,
			logger,
		)
		events = s.events
		logger.Info("security events enabled", "backend", cfg.MQ.Backend, "channel", cfg.MQ.SecurityEventsChannel)
	}

	credentialRepo := store.NewCredentialRepository(dbConn)
	employeeRepo := store.NewEmployeeRepository(dbConn)
	taskRepo := store.NewTaskRepository(dbConn)

	authService := services.NewAuthService(credentialRepo, hasher, tokens, limiter, events, logger)
	credentialService := services.NewCredentialService(credentialRepo, hasher, cfg.Security.SaltLength, events, logger)
	employeeService := services.NewEmployeeService(employeeRepo)
	taskService := services.NewTaskService(taskRepo)

	authMiddleware := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		logger.RequestLogger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
	})
	router.Route("/employees", func(r chi.Router) {
		handlers.EmployeeRouter(r, employeeService, credentialService, authMiddleware)
	})
	router.Route("/tasks", func(r chi.Router) {
		handlers.TaskRouter(r, taskService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx ends or the listener fails. Either way it shuts the
// server down and releases its connections before returning.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			s.logger.Error("server error", "error", runErr)
		}
	case <-ctx.Done():
		s.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown drains in-flight requests and queued security events, then
// releases connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		if closeErr := s.events.Close(ctx); closeErr != nil {
			s.logger.Warn("security events not drained", "error", closeErr)
		}
	}
	s.close()
	return err
}

func (s *Server) close() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.logger.Warn("closing mq failed", "error", err)
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
