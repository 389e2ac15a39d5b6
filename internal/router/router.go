// Package router assembles the Echo instance: global middleware, the
// error handler and every route of the portal API.
package router

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cidade-aberta/internal/config"
	"github.com/iliyamo/cidade-aberta/internal/handler"
	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/middleware"
	"github.com/iliyamo/cidade-aberta/internal/session"
)

// Handlers groups the resource handlers mounted under /api.
type Handlers struct {
	Ocorrencias *handler.OcorrenciaHandler
	Tracking    *handler.TrackingHandler
	Contato     *handler.ContatoHandler
	Auth        *handler.AuthHandler
	AdminUsers  *handler.AdminUsersHandler
	Stats       *handler.StatsHandler
}

// Deps carries the infrastructure the middleware chain needs. Redis may be
// nil, which turns rate limiting and response caching off.
type Deps struct {
	DB            *sql.DB
	Redis         *redis.Client
	Sessions      session.Store
	Staff         middleware.StaffLookup
	SessionCookie string
	CORSOrigins   []string
	UploadDir     string
	RateLimit     config.RateLimitConfig
	Cache         config.CacheConfig
	Log           *logger.Logger
}

// New returns a configured Echo instance with all routes registered.
func New(d Deps, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(
		echomw.Recover(),
		echomw.RequestID(),
		middleware.RequestLogger(d.Log),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestedWith},
		}),
		echomw.SecureWithConfig(echomw.SecureConfig{
			XSSProtection:      "1; mode=block",
			ContentTypeNosniff: "nosniff",
			XFrameOptions:      "DENY",
			ReferrerPolicy:     "strict-origin-when-cross-origin",
		}),
		middleware.Session(d.Sessions, d.Staff, d.SessionCookie, d.Log),
	)

	RegisterRoutes(e, d.DB)
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}
	RegisterAPI(e, d, h)
	return e
}

// RegisterRoutes registers routes outside the API namespace.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAPI mounts the /api endpoints. Role checks run as route
// middleware; the services repeat them for callers outside HTTP.
func RegisterAPI(e *echo.Echo, d Deps, h Handlers) {
	api := e.Group("/api", middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
	staff := middleware.RequireStaff()
	super := middleware.RequireSuperAdmin()

	api.POST("/ocorrencias", h.Ocorrencias.Create)
	api.GET("/ocorrencias", h.Ocorrencias.Get)
	api.PUT("/ocorrencias", h.Ocorrencias.Update, staff)
	api.DELETE("/ocorrencias", h.Ocorrencias.Delete, staff)

	api.GET("/rastreamento", h.Tracking.Track)
	api.POST("/rastreamento", h.Tracking.Track)

	api.POST("/contato", h.Contato.Send)
	api.GET("/contato", h.Contato.List, staff)
	api.PUT("/contato", h.Contato.UpdateStatus, staff)

	api.POST("/login", h.Auth.Login)
	api.GET("/login", h.Auth.Session)
	api.GET("/sessao", h.Auth.Session)
	api.POST("/sessao", h.Auth.Logout)
	api.POST("/senha", h.Auth.ChangePassword, staff)

	api.GET("/admin_users", h.AdminUsers.Get, staff)
	api.POST("/admin_users", h.AdminUsers.Create, super)
	api.PUT("/admin_users", h.AdminUsers.Update, staff)
	api.DELETE("/admin_users", h.AdminUsers.Delete, super)
	api.POST("/admin_users/convite", h.Auth.AcceptInvite)

	api.GET("/stats", h.Stats.Get, middleware.ResponseCache(d.Cache, d.Redis))
}
