package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/keystone-labs/rbac-core/internal/api/handler"
	"github.com/keystone-labs/rbac-core/internal/api/middleware"
	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Auth  ports.AuthService
	Users ports.UserService
	Roles ports.RoleService
	Audit ports.AuditService

	Authenticator middleware.Authenticator
	Authorizer    middleware.Authorizer

	// HealthChecks are probed by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck

	Log                zerolog.Logger
	RateLimitPerMinute int
	Production         bool

	// MetricsRegisterer receives the HTTP metrics. A private registry is
	// used when nil. MetricsGatherer defaults to the global gatherer plus
	// that registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer, gatherer := d.MetricsRegisterer, d.MetricsGatherer
	if registerer == nil {
		reg := prometheus.NewRegistry()
		registerer = reg
		if gatherer == nil {
			gatherer = prometheus.Gatherers{prometheus.DefaultGatherer, reg}
		}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.SecureHeaders(d.Production))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "rbac",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	profileHandler := handler.NewProfileHandler(d.Users)
	adminHandler := handler.NewAdminHandler(d.Users)
	roleHandler := handler.NewRoleHandler(d.Roles)
	auditHandler := handler.NewAuditHandler(d.Audit)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	authn := middleware.Authenticate(d.Authenticator)
	admin := middleware.RequireRole(d.Authorizer, domain.RoleAdmin, d.Log)
	can := func(action string) echo.MiddlewareFunc {
		return middleware.RequirePermission(d.Authorizer, action, d.Log)
	}
	limited := middleware.RateLimit(d.RateLimitPerMinute)

	// --- Auth routes ---
	e.POST("/register-user", authHandler.Register)
	e.POST("/user/login", authHandler.Login, limited)
	e.POST("/user/logout", authHandler.Logout, authn)
	e.POST("/user/changepassword", authHandler.ChangePassword, authn)
	e.POST("/user/forgot-password", authHandler.ForgotPassword, limited)
	e.POST("/user/reset-password", authHandler.VerifyResetCode, limited)
	e.POST("/user/newpassword", authHandler.ResetPassword, limited)

	// --- Self-service profile ---
	e.GET("/user-profile/:id", profileHandler.Get, authn, can(domain.PermViewOwnProfile))
	e.PUT("/user-profile/update/:id", profileHandler.Update,
		authn, can(domain.PermUpdateOwnProfile), middleware.ImageUpload())
	e.DELETE("/user/delete/:id", profileHandler.Delete, authn, can(domain.PermDeleteUser))

	// --- Administration ---
	e.GET("/admin/view-users", adminHandler.ListUsers, authn, admin)
	e.GET("/admin/view-users/:id", adminHandler.GetUser, authn, admin)
	e.POST("/admin/create-user", adminHandler.CreateUser, authn, admin)
	e.PUT("/admin/update-user/:id", adminHandler.UpdateUser, authn, admin)
	e.DELETE("/admin/delete-user/:id", adminHandler.DeleteUser, authn, admin)

	e.GET("/roles", roleHandler.List, authn, admin)
	e.GET("/roles/:id", roleHandler.Get, authn, admin)
	e.POST("/admin/create-roles", roleHandler.Create, authn, admin)
	e.PATCH("/admin/update-roles/:id", roleHandler.Update, authn, admin)
	e.DELETE("/admin/delete-roles/:id", roleHandler.Delete, authn, admin)
	e.POST("/admin/roles/:id/permissions", roleHandler.AssignPermissions, authn, admin)

	audit := e.Group("/admin/audit-logs", authn, admin)
	audit.GET("/user", auditHandler.ByUser)
	audit.GET("/action", auditHandler.ByAction)
	audit.DELETE("/cleanup", auditHandler.Cleanup)
	audit.GET("/paginate", auditHandler.Paginate)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
