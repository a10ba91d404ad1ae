package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andriansp/gocommerce/internal/container"
	handlers "github.com/andriansp/gocommerce/internal/interface/http"
	"github.com/andriansp/gocommerce/internal/interface/middleware"
	"github.com/andriansp/gocommerce/pkg/helpers"
)

// AccountModule wires the account handlers into routes.
// Public: register, login, check-email, check-username.
// Protected: logout, profile, dashboard, user-info, change-password,
// addresses, deactivate.
type AccountModule struct {
	Accounts  *handlers.AccountHandler
	Addresses *handlers.AddressHandler
	Tokens    *helpers.TokenManager
}

func NewAccountModule(accounts *handlers.AccountHandler, addresses *handlers.AddressHandler, tokens *helpers.TokenManager) *AccountModule {
	return &AccountModule{Accounts: accounts, Addresses: addresses, Tokens: tokens}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	probeLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Accounts.Register)
	rg.POST("/login", loginLimiter, m.Accounts.Login)
	rg.POST("/check-email", probeLimiter, m.Accounts.CheckEmail)
	rg.POST("/check-username", probeLimiter, m.Accounts.CheckUsername)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.Tokens))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/logout", m.Accounts.Logout)
		auth.GET("/profile", m.Accounts.GetProfile)
		auth.PUT("/profile", m.Accounts.UpdateProfile)
		auth.POST("/profile/avatar", m.Accounts.UploadAvatar)
		auth.GET("/dashboard", m.Accounts.Dashboard)
		auth.GET("/user-info", m.Accounts.UserInfo)
		auth.POST("/change-password", m.Accounts.ChangePassword)
		auth.POST("/deactivate", m.Accounts.Deactivate)

		auth.GET("/addresses", m.Addresses.List)
		auth.POST("/addresses", m.Addresses.Create)
		auth.GET("/addresses/:id", m.Addresses.Get)
		auth.PUT("/addresses/:id", m.Addresses.Update)
		auth.DELETE("/addresses/:id", m.Addresses.Delete)
	}
}
