package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bookly/bookly-api/docs"
	"github.com/bookly/bookly-api/internal/api/handler"
	"github.com/bookly/bookly-api/internal/api/middleware"
	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/guard"
	"github.com/bookly/bookly-api/internal/core/ports"
	"github.com/bookly/bookly-api/internal/infrastructure/http/handlers"
)

// Deps holds everything the router wires into handlers and guards.
type Deps struct {
	Log zerolog.Logger

	Sessions ports.SessionService
	Accounts ports.AccountService
	Books    ports.BookService
	Reviews  ports.ReviewService

	Codec     guard.Decoder
	Blocklist ports.Blocklist
	Users     guard.UserFinder

	// Checks are the readiness probes served on /health/ready.
	Checks map[string]handlers.Check

	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "bookly",
		Registerer: registerer,
	}))

	// --- Operational routes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Guards ---
	access := guard.Bearer(guard.Access, deps.Codec, deps.Blocklist)
	accessUser := access.With(guard.ResolveUser(deps.Users))
	refresh := guard.Bearer(guard.Refresh, deps.Codec, deps.Blocklist)

	anyRole := middleware.RBAC(domain.RoleUser, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Sessions, deps.Accounts)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.GET("/verify/:token", authHandler.Verify)
	auth.POST("/login", authHandler.Login)
	auth.GET("/refresh_token", authHandler.RefreshToken,
		middleware.CookieBearer(handler.RefreshCookieName), middleware.Guard(refresh))
	auth.GET("/me", authHandler.Me, middleware.Guard(accessUser), anyRole)
	auth.GET("/logout", authHandler.Logout, middleware.Guard(access))
	auth.POST("/password-reset-request", authHandler.PasswordResetRequest)
	auth.POST("/password-reset-confirm/:token", authHandler.PasswordResetConfirm)
	auth.POST("/send_mail", authHandler.SendMail, middleware.Guard(accessUser), adminOnly)

	// --- Book routes ---
	bookHandler := handler.NewBookHandler(deps.Books)
	books := v1.Group("/books", middleware.Guard(accessUser), anyRole)
	books.GET("", bookHandler.List)
	books.POST("", bookHandler.Create)
	books.GET("/user/:user_id", bookHandler.ListByUser)
	books.GET("/:id", bookHandler.Get)
	books.PATCH("/:id", bookHandler.Update)
	books.DELETE("/:id", bookHandler.Delete, adminOnly)

	// --- Review routes ---
	reviewHandler := handler.NewReviewHandler(deps.Reviews)
	reviews := v1.Group("/reviews", middleware.Guard(accessUser))
	reviews.POST("/book/:id", reviewHandler.AddToBook)

	return e
}
