package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"input-portal/internal/config"
	"input-portal/internal/handlers"
	"input-portal/internal/middleware"
	"input-portal/internal/models"
)

const sessionName = "portal_session"

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// files spill to temp files.
const maxUploadMemory = 32 << 20

func NewRouter(cfg *config.Config, deps handlers.Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := handlers.New(deps)

	r := gin.New()
	r.MaxMultipartMemory = maxUploadMemory
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 8 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.InjectIdentity())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// SETUP: reachable while the admin password is still unset
	r.GET("/setup/status", h.SetupStatus)
	r.POST("/setup", h.Setup)
	r.POST("/logout", h.Logout)

	ready := r.Group("/")
	ready.Use(middleware.RequireBootstrapComplete(deps.Credentials, deps.Logger))

	ready.POST("/login", h.Login)

	auth := ready.Group("/")
	auth.Use(middleware.RequireAuth())
	auth.GET("/me", h.Me)
	auth.GET("/dictionary", h.Dictionary)
	auth.POST("/submissions", h.CreateSubmission)
	auth.POST("/uploads", h.CreateUpload)

	// ADMIN
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.GET("/companies", h.Companies)
	admin.GET("/audit", h.ListAuditLogs)

	return r
}
