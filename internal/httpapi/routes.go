package httpapi

import (
	"log/slog"

	"clubhub/internal/auth"
	"clubhub/internal/rbac"
	"clubhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the development API. Keep this free of business logic.
func NewRouter(h Handlers, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes wires HTTP routes to handlers.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")

	// public: credential issuing
	api.POST("/token", h.ObtainToken)
	api.POST("/token/refresh", h.RefreshToken)
	api.POST("/register", h.Register)

	// protected resources
	authed := api.Group("")
	authed.Use(auth.RequireAccessToken(h.Auth))
	{
		authed.GET("/me", h.Me)

		clubs := authed.Group("/clubs")
		clubs.GET("", h.ListClubs)
		clubs.GET("/:id", h.GetClub)
		clubs.POST("/:id/join", h.JoinClub)
		clubs.POST("/:id/leave", h.LeaveClub)

		clubAdmin := clubs.Group("")
		clubAdmin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		clubAdmin.POST("", h.CreateClub)
		clubAdmin.PATCH("/:id", h.UpdateClub)
		clubAdmin.PUT("/:id", h.UpdateClub)
		clubAdmin.DELETE("/:id", h.DeleteClub)

		events := authed.Group("/events")
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
		events.POST("/:id/register", h.RegisterForEvent)
		events.POST("/:id/unregister", h.UnregisterFromEvent)

		eventAdmin := events.Group("")
		eventAdmin.Use(rbac.RequireAnyRole(rbac.RoleEventAdmin))
		eventAdmin.POST("", h.CreateEvent)
		eventAdmin.PATCH("/:id", h.UpdateEvent)
		eventAdmin.PUT("/:id", h.UpdateEvent)
		eventAdmin.DELETE("/:id", h.DeleteEvent)
	}
}
