package router

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"wellnesshub/internal/auth"
	"wellnesshub/internal/config"
	"wellnesshub/internal/handler"
	"wellnesshub/internal/middleware"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth         *handler.AuthHandler
	Employee     *handler.EmployeeHandler
	Practitioner *handler.PractitionerHandler
	Event        *handler.EventHandler
	Upload       *handler.UploadHandler
	Health       *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *zap.Logger, verifier *auth.Verifier, h Handlers) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("10M"))

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if cfg.UploadDir != "" && cfg.CloudinaryURL == "" {
		e.Static("/uploads", cfg.UploadDir)
	}

	api := e.Group("/api")
	api.GET("/health", h.Health.Health, middleware.NoStore())

	authenticate := middleware.Authenticate(verifier)
	cached := middleware.PublicCache(cfg.PublicCacheMaxAge)
	noStore := middleware.NoStore()
	secured := func(guards ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{authenticate, noStore}, guards...)
	}

	// Auth
	api.POST("/auth/register", h.Auth.Register, noStore)
	api.POST("/auth/login", h.Auth.Login, noStore)
	api.GET("/auth/me", h.Auth.Me, secured()...)
	api.POST("/auth/logout", h.Auth.Logout, secured()...)
	api.PUT("/auth/change-password", h.Auth.ChangePassword, secured()...)

	// Practitioners
	managePractitioners := secured(middleware.RequirePermission(auth.PermManagePractitioners))
	api.GET("/practitioners", h.Practitioner.List, cached)
	api.GET("/practitioners/:id", h.Practitioner.Get, cached)
	api.GET("/practitioners/admin/all", h.Practitioner.ListAdmin, managePractitioners...)
	api.POST("/practitioners", h.Practitioner.Create, managePractitioners...)
	api.PUT("/practitioners/:id", h.Practitioner.Update, managePractitioners...)
	api.PATCH("/practitioners/:id/featured", h.Practitioner.ToggleFeatured, managePractitioners...)
	api.DELETE("/practitioners/:id", h.Practitioner.Delete, managePractitioners...)

	// Events
	manageEvents := secured(middleware.RequirePermission(auth.PermManageEvents))
	api.GET("/events", h.Event.List, cached)
	api.GET("/events/featured", h.Event.Featured, cached)
	api.GET("/events/upcoming", h.Event.Upcoming, cached)
	api.GET("/events/:id", h.Event.Get, cached)
	api.GET("/events/admin/all", h.Event.ListAdmin, secured(middleware.RequireEmployee())...)
	api.POST("/events", h.Event.Create, manageEvents...)
	api.PUT("/events/:id", h.Event.Update, manageEvents...)
	api.DELETE("/events/:id", h.Event.Delete, manageEvents...)

	// Employees
	employees := api.Group("/employees", secured(middleware.RequireEmployee())...)
	manageUsers := middleware.RequirePermission(auth.PermManageUsers)
	employees.GET("", h.Employee.List)
	employees.GET("/:id", h.Employee.Get)
	employees.POST("", h.Employee.Create, manageUsers)
	employees.PUT("/:id", h.Employee.Update, manageUsers)
	employees.DELETE("/:id", h.Employee.Delete, middleware.RequireElevated(auth.PermDeleteUsers))
	employees.POST("/:id/reset-password", h.Employee.ResetPassword, middleware.RequireElevated(auth.PermChangeUserPasswords))

	// Uploads
	uploads := api.Group("/upload", secured(middleware.RequireEmployee())...)
	uploads.POST("/image", h.Upload.UploadImage)
	uploads.GET("/info/:filename", h.Upload.Info)
	uploads.DELETE("/:filename", h.Upload.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports JSON field names and knows the permission tag.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return auth.Permission(fl.Field().String()).Valid()
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
