package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/controllers"
	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
)

// RegisterUserRoutes sets up user management routes
func RegisterUserRoutes(e *echo.Echo, userController *controllers.UserController) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.GET("/users/me", userController.GetCurrentUser)

	// Dropdown sources for assignment and reporting screens
	r.GET("/users/underwriters", userController.ListUnderwriters,
		middleware.RequireRole(models.RoleSuperAdmin, models.RoleUWAdmin, models.RoleAdmin))
	r.GET("/users/agents", userController.ListAgents,
		middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin))

	// User administration is super admin territory
	admin := e.Group("/api/users")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireRole(models.RoleSuperAdmin))
	admin.GET("", userController.ListUsers)
	admin.POST("", userController.CreateUser)
	admin.PUT("/:id", userController.UpdateUser)
	admin.DELETE("/:id", userController.DeleteUser)
}
