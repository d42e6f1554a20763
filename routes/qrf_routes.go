package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/controllers"
	"github.com/gig-portal/eqrf_backend/middleware"
)

// RegisterQRFRoutes sets up the quote request workflow routes
func RegisterQRFRoutes(e *echo.Echo, qrfController *controllers.QRFController) {
	r := e.Group("/api/qrfs")
	r.Use(middleware.JWTMiddleware())

	r.GET("", qrfController.ListQRFs)
	r.GET("/notifications/count", qrfController.NotificationsCount)
	r.GET("/:id", qrfController.GetQRF)
	r.POST("", qrfController.CreateQRF)
	r.PUT("/:id", qrfController.SaveQRF)

	// Assignment requires assignment authority; the fine-grained state checks
	// live in the controller.
	r.POST("/:id/assign", qrfController.AssignUnderwriter, middleware.RequireAssignmentAuthority())
	r.POST("/:id/unassign", qrfController.UnassignUnderwriter, middleware.RequireAssignmentAuthority())

	r.POST("/:id/approve", qrfController.ApproveQRF)
	r.POST("/:id/reject", qrfController.RejectQRF)
	r.POST("/:id/lock", qrfController.LockQRF)
	r.POST("/:id/unlock", qrfController.UnlockQRF)
}
