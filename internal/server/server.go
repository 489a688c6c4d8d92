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

	"money-transfer-service/internal/cache"
	"money-transfer-service/internal/config"
	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/handler"
	"money-transfer-service/internal/repository"
	"money-transfer-service/internal/scheduler"
	"money-transfer-service/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
)

// Server represents the HTTP server
type Server struct {
	router    *mux.Router
	server    *http.Server
	db        *sql.DB
	redis     *goredis.Client
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
	port      string
}

// NewServer wires the full service: database, optional summary cache,
// services, background jobs and routes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Successfully connected to database")

	store := repository.NewStore(db, logger)
	fees := service.NewFeeCalculator(cfg.FeePercentage, cfg.FeeCap, cfg.CommissionPercentage)

	// The summary cache is optional; without Redis every read hits Postgres.
	var redisClient *goredis.Client
	var summaryCache *cache.ViewCache[domain.TransactionSummary]
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("Redis unavailable, summary caching disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			summaryCache = cache.NewViewCache[domain.TransactionSummary](redisClient, time.Hour, logger)
			logger.Info("Summary caching enabled", "addr", cfg.RedisAddr)
		}
	}

	accountService := service.NewAccountService(store, logger)
	transferService := service.NewTransferService(store, fees, logger)
	commissionService := service.NewCommissionService(store, fees, logger)
	summaryService := service.NewSummaryService(store, summaryCache, logger)

	if cfg.SeedData {
		if err := accountService.SeedDemoAccounts(); err != nil {
			db.Close()
			return nil, err
		}
	}

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched, err = scheduler.New(commissionService, summaryService,
			cfg.CommissionSweepCron, cfg.DailySummaryCron, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(transferService, summaryService, commissionService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/api/transactions/transfer", transactionHandler.Transfer).Methods("POST")
	router.HandleFunc("/api/transactions/summary", transactionHandler.GetSummary).Methods("GET")
	router.HandleFunc("/api/transactions/summary/rebuild", transactionHandler.RebuildSummary).Methods("POST")
	router.HandleFunc("/api/transactions/commissions/sweep", transactionHandler.SweepCommissions).Methods("POST")
	router.HandleFunc("/api/transactions", transactionHandler.ListTransactions).Methods("GET")

	router.HandleFunc("/accounts/{account_number}", accountHandler.GetAccount).Methods("GET")

	router.HandleFunc("/health", healthHandler(db)).Methods("GET")

	return &Server{
		router:    router,
		db:        db,
		redis:     redisClient,
		scheduler: sched,
		logger:    logger,
	}, nil
}

// healthHandler reports liveness, backed by a database ping.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
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

// Start starts the HTTP server and background jobs on the specified port.
// Port "0" asks the OS for a free port.
func (s *Server) Start(port string) (string, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server, background jobs and connections.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	var shutdownErr error
	if s.server != nil {
		shutdownErr = s.server.Shutdown(ctx)
	}

	if s.redis != nil {
		s.redis.Close()
	}

	if s.db != nil {
		s.db.Close()
	}

	return shutdownErr
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
	// Port "0" signals a test environment; keep its log output quiet.
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

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
