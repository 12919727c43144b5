package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/account-service/internal/identity"
	"github.com/ErlanBelekov/account-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, profileHandler *handler.ProfileHandler, verifier identity.Verifier, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(corsOrigins))
	// request_id comes from the log handler, not from slog-gin.
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		Filters:          []sloggin.Filter{sloggin.IgnoreMethod(http.MethodOptions)},
	}))
	r.Use(middleware.Metrics())

	// Public auth routes. Logout reads the bearer token itself when present.
	auth := r.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/logout", authHandler.Logout)

	// Protected profile routes
	profile := r.Group("/profile", middleware.Auth(verifier, logger))
	profile.GET("", profileHandler.Get)
	profile.POST("", profileHandler.Create)
	profile.PUT("", profileHandler.Update)

	return r
}
