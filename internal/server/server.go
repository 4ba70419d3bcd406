package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"contractor-payments/internal/config"
	"contractor-payments/internal/domain"
	"contractor-payments/internal/events"
	"contractor-payments/internal/handler"
	"contractor-payments/internal/repository"
	"contractor-payments/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

// Backend is the storage the HTTP surface runs on. Both the PostgreSQL and
// the in-memory stores satisfy it.
type Backend interface {
	domain.Ledger
	domain.Catalog
}

// HealthCheck reports whether the backing storage is reachable.
type HealthCheck func(ctx context.Context) error

// Server represents the HTTP server
type Server struct {
	router    *mux.Router
	server    *http.Server
	db        *sql.DB
	publisher *events.NATSPublisher
	logger    *slog.Logger
	port      string
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// Initialize database connection
	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Successfully connected to database")

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	var (
		publisher events.Publisher = events.NopPublisher{}
		natsPub   *events.NATSPublisher
	)
	if cfg.NATSURL != "" {
		natsPub, err = events.NewNATSPublisher(events.NATSConfig{URL: cfg.NATSURL}, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		publisher = natsPub
		logger.Info("Publishing payment events", "url", cfg.NATSURL)
	}

	// Initialize store (Unit of Work)
	store := repository.NewStore(db, logger)

	router := NewRouter(store, publisher, db.PingContext, logger)

	return &Server{
		router:    router,
		db:        db,
		publisher: natsPub,
		logger:    logger,
	}, nil
}

// NewRouter wires services and handlers over the given backend.
func NewRouter(backend Backend, publisher events.Publisher, health HealthCheck, logger *slog.Logger) *mux.Router {
	// Initialize services
	accountService := service.NewAccountService(backend, logger)
	paymentService := service.NewPaymentService(backend, publisher, logger)
	balanceService := service.NewBalanceService(backend, publisher, logger)
	queryService := service.NewQueryService(backend, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	balanceHandler := handler.NewBalanceHandler(balanceService)
	contractHandler := handler.NewContractHandler(queryService)
	adminHandler := handler.NewAdminHandler(queryService)

	// Setup router
	router := mux.NewRouter()

	// Add middleware for logging
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/accounts/{account_id}", accountHandler.GetAccount).Methods("GET")

	// Engine routes
	router.HandleFunc("/jobs/{job_id}/pay", paymentHandler.PayJob).Methods("POST")
	router.HandleFunc("/balances/deposit/{user_id}", balanceHandler.Deposit).Methods("POST")

	// Read-only views
	router.HandleFunc("/contracts", contractHandler.ListContracts).Methods("GET")
	router.HandleFunc("/contracts/{id}", contractHandler.GetContract).Methods("GET")
	router.HandleFunc("/jobs/unpaid", contractHandler.ListUnpaidJobs).Methods("GET")
	router.HandleFunc("/admin/best-profession", adminHandler.BestProfession).Methods("GET")
	router.HandleFunc("/admin/best-clients", adminHandler.BestClients).Methods("GET")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	return router
}

// loggingMiddleware tags each request with an id and logs its outcome.
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			// Create response wrapper to capture status code
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	// Get the actual port being used
	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed to start", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	if s.publisher != nil {
		s.publisher.Close()
	}

	if s.db != nil {
		s.db.Close()
	}
	return err
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	// Initialize logger - use io.Discard for tests to avoid panic
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	// Start the server and get the actual port
	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
