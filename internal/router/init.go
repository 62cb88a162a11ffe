package router

import (
	"github.com/yklymenko/contacthub/internal/application"
	"github.com/yklymenko/contacthub/internal/container"
	"github.com/yklymenko/contacthub/internal/infrastructure/postgres"
	handlers "github.com/yklymenko/contacthub/internal/interface/http"
	"github.com/yklymenko/contacthub/internal/router/modules"
)

type AccountModuleDeps struct {
	Service        *application.AccountService
	AuthHandler    *handlers.AuthHandler
	AccountHandler *handlers.AccountHandler
}

func buildAccountDeps() AccountModuleDeps {
	accounts := postgres.NewAccountRepository(container.GetPGPool())
	roles := postgres.NewRoleRepository(container.GetPGPool())

	service := application.NewAccountService(
		accounts,
		roles,
		container.GetHasher(),
		container.GetAvatars(),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetGCS(),
		container.GetConfig().GCSBucket,
	)

	authHandler := handlers.NewAuthHandler(
		service,
		container.GetRedis(),
		container.GetLogger(),
		container.GetConfig(),
		container.GetRabbitPub(),
	)
	accountHandler := handlers.NewAccountHandler(service, container.GetLogger())

	return AccountModuleDeps{
		Service:        service,
		AuthHandler:    authHandler,
		AccountHandler: accountHandler,
	}
}

func buildContactDeps() *handlers.ContactHandler {
	repo := postgres.NewContactRepository(container.GetPGPool())
	service := application.NewContactService(
		repo,
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESContactsIndex,
	)
	return handlers.NewContactHandler(service, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	accountDeps := buildAccountDeps()
	contactHandler := buildContactDeps()

	r.Add(modules.NewAuthModule(accountDeps.AuthHandler, container.GetJWT()))
	r.Add(modules.NewUserModule(accountDeps.AccountHandler, container.GetJWT()))
	r.Add(modules.NewContactModule(contactHandler, container.GetJWT()))
}
