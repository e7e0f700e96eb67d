// Package server implements the bankd REST API consumed by the terminal
// client and the web dashboard.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bankd-dev/bankd/internal/auth"
	"github.com/bankd-dev/bankd/internal/config"
	"github.com/bankd-dev/bankd/internal/models"
	"github.com/bankd-dev/bankd/internal/seed"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	validator   *validator.Validate
	asynqClient *asynq.Client
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// The JWT secret lives in the Config singleton so restarts, workers and
	// seeded deployments all sign with the same key. It must exist before
	// any user, including seeded ones, can log in.
	appConfig, err := ensureAppConfig(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	auth.InitializeJWT(appConfig.JWTSecret)

	if cfg.Seed.File != "" {
		if err := seed.Apply(db, cfg.Seed.File, zlog); err != nil {
			zlog.Warn().Err(err).Str("file", cfg.Seed.File).Msg("Failed to apply seed file")
		}
	}

	validate := validator.New()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		validator:   validate,
		asynqClient: asynqClient,
		version:     version,
	}

	server.setupRouter()

	return server, nil
}

// ensureAppConfig loads the Config singleton, creating it with a fresh JWT
// secret on a new database
func ensureAppConfig(db *gorm.DB) (*models.Config, error) {
	var appConfig models.Config
	err := db.First(&appConfig).Error
	if err == nil {
		return &appConfig, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, err
	}

	appConfig = models.Config{
		JWTSecret:       hex.EncodeToString(secretBytes),
		AccrualSchedule: "0 2 * * *",
		SavingsRateBps:  150,
	}
	if err := db.Create(&appConfig).Error; err != nil {
		return nil, err
	}
	return &appConfig, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 * time.Second
		busyTimeout     = 5000
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL first for concurrency, the rest are performance tuning
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints. The /req prefix is the wire contract the
	// existing front-ends already speak.
	s.router.POST("/req/signup", s.signup)
	s.router.POST("/req/login", s.login)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		api.GET("/user", s.getIdentity)
		api.GET("/dashboard", s.getDashboard)
		api.POST("/logout", s.logout)

		// Money movement
		api.GET("/transactions", s.listTransactions)
		api.POST("/deposit", s.deposit)
		api.POST("/withdraw", s.withdraw)
		api.POST("/transfer", s.transfer)

		// Bill payments
		api.GET("/payees", s.listPayees)
		api.POST("/payees", s.createPayee)
		api.GET("/billpay", s.listBillPayments)
		api.POST("/billpay", s.createBillPayment)

		// Loans
		api.GET("/loans", s.listLoans)
		api.POST("/loans", s.applyForLoan)
		api.GET("/loans/:id/schedule", s.getLoanSchedule)

		// Profile
		api.GET("/profile", s.getProfile)
		api.PATCH("/profile", s.updateProfile)
		api.POST("/profile/password", s.changePassword)
		api.POST("/profile/verify-email", s.requestEmailVerification)
		api.POST("/profile/verify-email/confirm", s.confirmEmailVerification)
		api.DELETE("/profile", s.deleteAccount)

		// Admin console (role-checked)
		admin := api.Group("/admin")
		admin.Use(AdminOnlyMiddleware(s.logger))
		{
			admin.GET("/users", s.adminListUsers)
			admin.POST("/users", s.adminCreateUser)
			admin.DELETE("/users/:id", s.adminDeleteUser)
			admin.GET("/loans", s.adminListLoans)
			admin.POST("/loans/:id/approve", s.adminApproveLoan)
			admin.POST("/loans/:id/reject", s.adminRejectLoan)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "bankd-api",
		"version":   s.version,
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured gin engine, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close task queue client")
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
