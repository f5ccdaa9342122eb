package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prestaweb/api/internal/config"
	"github.com/prestaweb/api/internal/handler"
	"github.com/prestaweb/api/internal/realtime"
	"github.com/prestaweb/api/internal/repository"
	"github.com/prestaweb/api/internal/service"
	"github.com/prestaweb/api/pkg/response"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := newLogger(cfg)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	userRepo := repository.NewUserRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cache := repository.NewSummaryCache(redisClient)

	// Initialize realtime hub and services
	hub := realtime.NewHub(log)
	authService := service.NewAuthService(clientRepo, userRepo, log, cfg)
	clientService := service.NewClientService(clientRepo, cache, log)
	loanService := service.NewLoanService(loanRepo, installmentRepo, cache, log, cfg)
	notificationService := service.NewNotificationService(notificationRepo, hub, log)
	paymentService := service.NewPaymentService(loanRepo, installmentRepo, notificationService, cache, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	loanHandler := handler.NewLoanHandler(loanService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	notificationHandler := handler.NewNotificationHandler(notificationService, authService, hub)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(cfg, log, authService,
		authHandler, clientHandler, loanHandler, paymentHandler, notificationHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	return log
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	cfg *config.Config,
	log *logrus.Logger,
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	clientHandler *handler.ClientHandler,
	loanHandler *handler.LoanHandler,
	paymentHandler *handler.PaymentHandler,
	notificationHandler *handler.NotificationHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(log))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Realtime notification channel (token authenticated in the handler)
	router.HandleFunc("/ws", notificationHandler.Connect).Methods("GET")

	// Public auth routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/staff/login", authHandler.StaffLogin).Methods("POST")

	// Client portal routes
	portal := api.PathPrefix("/me").Subrouter()
	portal.Use(handler.AuthMiddleware(authService))
	portal.HandleFunc("/loans", loanHandler.MyLoans).Methods("GET")
	portal.HandleFunc("/loans/{loanId}", loanHandler.MyLoanDetail).Methods("GET")
	portal.HandleFunc("/dashboard", loanHandler.Dashboard).Methods("GET")
	portal.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	portal.HandleFunc("/notifications/{notificationId}/read", notificationHandler.MarkRead).Methods("POST")

	// Staff routes
	staff := api.PathPrefix("").Subrouter()
	staff.Use(handler.AuthMiddleware(authService))
	staff.Use(handler.RequireStaff)
	staff.HandleFunc("/auth/staff/register", authHandler.RegisterStaff).Methods("POST")
	staff.HandleFunc("/clients", clientHandler.Create).Methods("POST")
	staff.HandleFunc("/clients", clientHandler.List).Methods("GET")
	staff.HandleFunc("/clients/{clientId}", clientHandler.Get).Methods("GET")
	staff.HandleFunc("/clients/{clientId}", clientHandler.Update).Methods("PUT")
	staff.HandleFunc("/clients/{clientId}", clientHandler.Delete).Methods("DELETE")
	staff.HandleFunc("/clients/{clientId}/loans", loanHandler.Create).Methods("POST")
	staff.HandleFunc("/clients/{clientId}/loans", loanHandler.ClientLoans).Methods("GET")
	staff.HandleFunc("/loans/{loanId}", loanHandler.Detail).Methods("GET")
	staff.HandleFunc("/loans/{loanId}", loanHandler.Delete).Methods("DELETE")
	staff.HandleFunc("/installments/{installmentId}/payments", paymentHandler.Record).Methods("POST")
	staff.HandleFunc("/installments/{installmentId}", paymentHandler.Delete).Methods("DELETE")
	staff.HandleFunc("/installments/{installmentId}/attachments", paymentHandler.AddAttachment).Methods("POST")
	staff.HandleFunc("/installments/{installmentId}/attachments", paymentHandler.ListAttachments).Methods("GET")
	staff.HandleFunc("/notifications", notificationHandler.Create).Methods("POST")

	return router
}
