package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenfield-library/lending-system/internal/api/handler"
	"github.com/greenfield-library/lending-system/internal/api/middleware"
	"github.com/greenfield-library/lending-system/internal/core/policy"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// Services bundles the core services the router exposes over HTTP.
type Services struct {
	Auth    ports.AuthService
	Catalog ports.CatalogService
	Request ports.RequestService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, svcs Services, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("lending"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svcs.Auth)
	catalogHandler := handler.NewCatalogHandler(svcs.Catalog)
	requestHandler := handler.NewRequestHandler(svcs.Request)
	adminHandler := handler.NewAdminHandler(svcs.Request)
	healthHandler := handler.NewHealthHandler(db, rdb)

	auth := middleware.Auth(jwtSecret)

	// --- Auth routes (no token required) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Versioned API (token + per-operation policy gate) ---
	v1 := e.Group("/v1", auth)

	v1.GET("/books", catalogHandler.List, middleware.RequireOperation(policy.OpBrowseCatalog))
	v1.POST("/books", catalogHandler.Create, middleware.RequireOperation(policy.OpAddBook))
	v1.PATCH("/books/:id/status", catalogHandler.SetStatus, middleware.RequireOperation(policy.OpSetAvailability))
	v1.GET("/books/categories", catalogHandler.Categories, middleware.RequireOperation(policy.OpBrowseCatalog))

	v1.POST("/requests", requestHandler.Submit, middleware.RequireOperation(policy.OpSubmitRequest))
	v1.POST("/requests/:id/approve", requestHandler.Approve, middleware.RequireOperation(policy.OpApproveRequest))
	v1.GET("/requests", requestHandler.List, middleware.RequireAnyOperation(policy.OpListOwnRequests, policy.OpListAllRequests))
	v1.GET("/my-books", requestHandler.MyBooks, middleware.RequireOperation(policy.OpListOwnBooks))

	v1.GET("/students", adminHandler.Students, middleware.RequireOperation(policy.OpListStudents))
	v1.GET("/students/:id", adminHandler.StudentDetail, middleware.RequireOperation(policy.OpViewStudent))
	v1.GET("/dashboard", adminHandler.Dashboard, middleware.RequireOperation(policy.OpViewDashboard))

	// --- Probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
