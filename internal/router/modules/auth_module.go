package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yklymenko/contacthub/internal/container"
	handlers "github.com/yklymenko/contacthub/internal/interface/http"
	"github.com/yklymenko/contacthub/internal/interface/middleware"
	"github.com/yklymenko/contacthub/pkg/helpers"
)

// AuthModule wires registration, email verification and the token
// endpoints. Everything here is public; abuse is kept in check with
// per-IP rate limits.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath())
	tokenLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP())
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.GET("/auth/verify-email", verifyLimiter, m.Handler.VerifyEmail)
	rg.POST("/auth/token", tokenLimiter, m.Handler.Token)
	rg.POST("/auth/refresh-token", refreshLimiter, m.Handler.RefreshToken)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
