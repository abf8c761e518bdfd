package routes

import (
	"time"

	"storeauth/api/handler"
	"storeauth/api/middleware"
	"storeauth/internal/access"
	"storeauth/internal/entity"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Health         *handler.HealthHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
	RefreshRate    *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	refreshRate := middleware.NewRateLimiter(rate.Every(time.Minute), 5, time.Hour).WithKey(middleware.BySubject)
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Users:          userHandler,
		Health:         healthHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
		RefreshRate:    refreshRate,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAccess := r.AuthMiddleware.RequireAccess
	requireSession := r.AuthMiddleware.RequireSession

	e.GET("/health", r.Health.Liveness)
	e.GET("/health/ready", r.Health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	e.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.POST("/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	e.POST("/auth/send-otp", r.Auth.SendOTP, r.LoginRate.Middleware())
	e.POST("/auth/verify", r.Auth.Verify, r.LoginRate.Middleware())
	e.POST("/auth/reset-password", r.Auth.ResetPassword, r.LoginRate.Middleware())
	e.POST("/auth/refresh-token", r.Auth.RefreshToken, r.AuthRate.Middleware(), r.AuthMiddleware.RequireRefresh, r.RefreshRate.Middleware())
	e.POST("/auth/super-admin", r.Auth.SuperAdmin, requireAccess, middleware.RequireRole(entity.UserRoleAdmin))

	users := e.Group("/users", requireAccess)
	users.GET("", r.Users.List, middleware.RequireRole(access.Staff...))
	users.GET("/me", r.Users.Me, requireSession)
	users.GET("/me/sessions", r.Users.MySessions, requireSession)
	users.POST("/logout", r.Users.Logout, requireSession)
	users.DELETE("/me/sessions/:id", r.Users.DeleteSession, requireSession)
	users.GET("/:id", r.Users.Get, middleware.RequireSelfOrStaff("id"))
	users.PATCH("/:id", r.Users.Update, middleware.RequireSelfOrStaff("id"))
	users.DELETE("/:id", r.Users.Delete, middleware.RequireSelfOrStaff("id"))
}
