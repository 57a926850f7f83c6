package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/neuroguard/patient-registry/internal/api/handler"
	"github.com/neuroguard/patient-registry/internal/api/middleware"
	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/ports"
	"github.com/neuroguard/patient-registry/internal/core/service"
	mongodb "github.com/neuroguard/patient-registry/internal/infrastructure/db/mongo"
	redisdb "github.com/neuroguard/patient-registry/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("registry"))

	// --- Dependencies ---
	revoker := redisdb.NewRevocationList(rdb)
	authRepo := mongodb.NewAuthRepository(db)
	authService := service.NewAuthService(authRepo, revoker, jwtSecret, 24*time.Hour)
	authHandler := handler.NewAuthHandler(authService)

	patientRepo := mongodb.NewPatientRepository(db)
	patientService := service.NewPatientService(patientRepo, audit, log)
	patientHandler := handler.NewPatientHandler(patientService)

	authMW := middleware.Auth(jwtSecret, revoker)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/logout", authHandler.Logout, authMW)

	// --- Patient routes ---
	// The Require middleware is the authoritative evaluation of the same
	// permission table the client consults before submitting.
	patients := e.Group("/api/patients", authMW)
	patients.GET("", patientHandler.List, middleware.Require(authz.OpView))
	patients.POST("", patientHandler.Create, middleware.Require(authz.OpCreate))
	patients.PUT("/:id", patientHandler.Update, middleware.Require(authz.OpEdit))
	patients.DELETE("/:id", patientHandler.Delete, middleware.Require(authz.OpDelete))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
