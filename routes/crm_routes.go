package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/controllers"
	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
)

// RegisterCRMRoutes sets up the sales pipeline routes
func RegisterCRMRoutes(e *echo.Echo, crmController *controllers.CRMController) {
	r := e.Group("/api/crm")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleAgent))

	r.GET("/leads", crmController.ListLeads)
	r.POST("/leads", crmController.SaveLead)
	r.PUT("/leads/:id", crmController.SaveLead)
	r.DELETE("/leads/:id", crmController.DeleteLead)

	r.GET("/companies", crmController.ListCompanies)
	r.POST("/companies", crmController.AddCompany)
	r.GET("/companies/similar", crmController.SimilarCompanies)
}
