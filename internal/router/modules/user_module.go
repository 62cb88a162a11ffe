package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yklymenko/contacthub/internal/container"
	handlers "github.com/yklymenko/contacthub/internal/interface/http"
	"github.com/yklymenko/contacthub/internal/interface/middleware"
	"github.com/yklymenko/contacthub/pkg/helpers"
)

// UserModule exposes the authenticated account surface:
// GET /api/users/me, PUT /api/users/avatar, PATCH /api/users/avatar
type UserModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByAccountID()),
	)
	{
		auth.GET("/users/me", m.Handler.Me)
		auth.PUT("/users/avatar", m.Handler.UpdateAvatar)
		auth.PATCH("/users/avatar", m.Handler.UploadAvatar)
	}
}
