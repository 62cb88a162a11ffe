package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yklymenko/contacthub/internal/container"
	handlers "github.com/yklymenko/contacthub/internal/interface/http"
	"github.com/yklymenko/contacthub/internal/interface/middleware"
	"github.com/yklymenko/contacthub/pkg/helpers"
)

// ContactModule registers the contact book routes. All of them require a
// valid session; reads get a softer limit than writes.
type ContactModule struct {
	Handler *handlers.ContactHandler
	JWT     *helpers.JWTManager
}

func NewContactModule(h *handlers.ContactHandler, jwt *helpers.JWTManager) *ContactModule {
	return &ContactModule{Handler: h, JWT: jwt}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByAccountID()))

	writeLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByAccountID())
	{
		auth.POST("/contacts", writeLimiter, m.Handler.Create)
		auth.GET("/contacts", m.Handler.List)
		auth.GET("/contacts/search", m.Handler.Search)
		auth.GET("/contacts/search-text", m.Handler.SearchText)
		auth.GET("/contacts/birthdays", m.Handler.Birthdays)
		auth.GET("/contacts/:id", m.Handler.Get)
		auth.PUT("/contacts/:id", writeLimiter, m.Handler.Update)
		auth.DELETE("/contacts/:id", writeLimiter, m.Handler.Delete)
	}
}
