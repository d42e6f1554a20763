// controllers/log_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
	"github.com/gig-portal/eqrf_backend/repositories"
)

type LogController struct {
	users repositories.UserStore
	logs  repositories.LogStore
}

func NewLogController(users repositories.UserStore, logs repositories.LogStore) *LogController {
	return &LogController{users: users, logs: logs}
}

// ListLogs returns the audit trail scoped to the caller's role.
func (lc *LogController) ListLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := lc.users.FindByID(ctx, middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	limit := int64(500)
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.ParseInt(limitStr, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := lc.logs.ListForUser(ctx, *user, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve logs",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logs retrieved successfully",
		Data:    logs,
	})
}
