package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/controllers"
	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
)

// RegisterLogRoutes sets up the audit trail and reporting routes
func RegisterLogRoutes(e *echo.Echo, logController *controllers.LogController, reportController *controllers.ReportController) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	// Every role may call this; the repository scopes what comes back.
	r.GET("/logs", logController.ListLogs)

	r.GET("/reports/tat", reportController.TatReport,
		middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleUWAdmin))
}
