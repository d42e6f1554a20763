package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/controllers"
	"github.com/gig-portal/eqrf_backend/middleware"
)

// RegisterAuthRoutes sets up login, logout and token refresh
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")

	auth.POST("/login", authController.Login)
	auth.POST("/refresh", authController.RefreshToken)
	// Validates its own token, so it sits outside the JWT group.
	auth.GET("/validate", authController.ValidateSession)

	protected := e.Group("/api/auth")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/logout", authController.Logout)
}
