package router

import (
	"github.com/andriansp/gocommerce/internal/application"
	"github.com/andriansp/gocommerce/internal/container"
	pginfra "github.com/andriansp/gocommerce/internal/infrastructure/postgres"
	handlers "github.com/andriansp/gocommerce/internal/interface/http"
	"github.com/andriansp/gocommerce/internal/router/modules"
)

type AccountDeps struct {
	Service        *application.AccountService
	AccountHandler *handlers.AccountHandler
	AddressHandler *handlers.AddressHandler
}

type CatalogDeps struct {
	Service *application.CatalogService
	Handler *handlers.CatalogHandler
}

func buildAccountDeps() AccountDeps {
	users := pginfra.NewUserRepository(container.GetPGPool())
	addresses := pginfra.NewAddressRepository(container.GetPGPool())

	service := application.NewAccountService(
		users,
		addresses,
		container.GetTokens(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetGCS(),
		container.GetConfig().GCSBucket,
	)

	accountHandler := handlers.NewAccountHandler(
		service,
		container.GetLogger(),
		container.GetConfig().CookieDomain,
		container.GetConfig().CookieSecure,
	)
	addressHandler := handlers.NewAddressHandler(service, container.GetLogger())

	return AccountDeps{Service: service, AccountHandler: accountHandler, AddressHandler: addressHandler}
}

func buildCatalogDeps() CatalogDeps {
	products := pginfra.NewProductRepository(container.GetPGPool())
	categories := pginfra.NewCategoryRepository(container.GetPGPool())

	service := application.NewCatalogService(
		products,
		categories,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESProductsIndex,
	)

	handler := handlers.NewCatalogHandler(service, container.GetLogger())

	return CatalogDeps{Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	account := buildAccountDeps()
	catalog := buildCatalogDeps()

	r.Add(modules.NewAccountModule(account.AccountHandler, account.AddressHandler, container.GetTokens()))
	r.Add(modules.NewCatalogModule(catalog.Handler, container.GetTokens()))
}
