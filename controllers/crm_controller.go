// controllers/crm_controller.go
package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
	"github.com/gig-portal/eqrf_backend/repositories"
	"github.com/gig-portal/eqrf_backend/utils"
)

type CRMController struct {
	leads     repositories.LeadStore
	companies repositories.CompanyStore
	users     repositories.UserStore
	logs      repositories.LogStore
}

func NewCRMController(leads repositories.LeadStore, companies repositories.CompanyStore, users repositories.UserStore, logs repositories.LogStore) *CRMController {
	return &CRMController{leads: leads, companies: companies, users: users, logs: logs}
}

// ListLeads returns the pipeline. Admin roles see everything, agents only
// their own leads.
func (cc *CRMController) ListLeads(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := cc.users.FindByID(ctx, middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	salespersonID := ""
	if user.Role == models.RoleAgent {
		salespersonID = user.ID.Hex()
	}

	leads, err := cc.leads.FetchAllLeads(ctx, salespersonID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve leads",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Leads retrieved successfully",
		Data:    leads,
	})
}

// SaveLead creates or updates a lead. Stage movements are audited.
func (cc *CRMController) SaveLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := cc.users.FindByID(ctx, middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	var lead models.CRMLead
	if err := c.Bind(&lead); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if id := c.Param("id"); id != "" {
		lead.ID = id
	}

	if lead.Title == "" || lead.CompanyName == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and company name are required",
		})
	}

	now := time.Now()
	var prevStage string
	var prevAttachments int
	isNew := lead.ID == ""
	if isNew {
		lead.SalespersonID = user.ID.Hex()
		lead.SalespersonName = user.FullName
		lead.CreatedAt = now
		if lead.Stage == "" {
			lead.Stage = models.StageNew
		}
	} else {
		prev, err := cc.leads.FetchLead(ctx, lead.ID)
		if err != nil {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Lead not found",
			})
		}
		if user.Role == models.RoleAgent && prev.SalespersonID != user.ID.Hex() {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "You do not have access to this lead",
			})
		}
		prevStage = prev.Stage
		prevAttachments = len(prev.Attachments)
		lead.SalespersonID = prev.SalespersonID
		lead.SalespersonName = prev.SalespersonName
		lead.CreatedAt = prev.CreatedAt
	}
	lead.UpdatedAt = now

	if lead.Stage == models.StageLost && lead.LostReason == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A lost reason is required when marking a lead as Lost",
		})
	}

	saved, err := cc.leads.PersistLead(ctx, lead)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save lead",
		})
	}

	// Smart audit: the action names follow what actually happened to the lead.
	switch {
	case isNew:
		cc.logAction(ctx, c, *user, "Create Lead", fmt.Sprintf("Created lead %s for %s", saved.Title, saved.CompanyName))
	case prevStage != saved.Stage && saved.Stage == models.StageWon:
		cc.logAction(ctx, c, *user, "Lead Won", fmt.Sprintf("Won lead %s for %s", saved.Title, saved.CompanyName))
	case prevStage != saved.Stage && saved.Stage == models.StageLost:
		cc.logAction(ctx, c, *user, "Lead Lost", fmt.Sprintf("Lost lead %s for %s: %s", saved.Title, saved.CompanyName, saved.LostReason))
	case prevStage != saved.Stage:
		cc.logAction(ctx, c, *user, "Lead Stage Change", fmt.Sprintf("Moved lead %s from %s to %s", saved.Title, prevStage, saved.Stage))
	case prevAttachments != len(saved.Attachments):
		cc.logAction(ctx, c, *user, "Lead Document Update", fmt.Sprintf("Updated documents on lead %s", saved.Title))
	}

	status := http.StatusOK
	message := "Lead saved successfully"
	if isNew {
		status = http.StatusCreated
		message = "Lead created successfully"
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    saved,
	})
}

// DeleteLead removes a lead from the pipeline.
func (cc *CRMController) DeleteLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := cc.users.FindByID(ctx, middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	lead, err := cc.leads.FetchLead(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Lead not found",
		})
	}
	if user.Role == models.RoleAgent && lead.SalespersonID != user.ID.Hex() {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this lead",
		})
	}

	if err := cc.leads.DeleteLead(ctx, lead.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete lead",
		})
	}

	cc.logAction(ctx, c, *user, "Delete Lead", fmt.Sprintf("Deleted lead %s for %s", lead.Title, lead.CompanyName))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Lead deleted successfully",
	})
}

// ListCompanies returns the shared company database.
func (cc *CRMController) ListCompanies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	companies, err := cc.companies.ListCompanies(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve companies",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Companies retrieved successfully",
		Data:    companies,
	})
}

// AddCompany registers a new company, rejecting obvious duplicates.
func (cc *CRMController) AddCompany(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.AddCompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Company name is required",
		})
	}

	existing, err := cc.companies.ListCompanies(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check for duplicates",
		})
	}
	for _, company := range existing {
		if utils.SimilarCompanyName(company.Name, req.Name) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "A similar company already exists",
				Data:    company,
			})
		}
	}

	created, err := cc.companies.InsertCompany(ctx, models.CRMCompany{
		Name:      req.Name,
		Industry:  req.Industry,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add company",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Company added successfully",
		Data:    created,
	})
}

// SimilarCompanies returns companies whose names look like the query, for the
// duplicate warning in the lead form.
func (cc *CRMController) SimilarCompanies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := c.QueryParam("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "name query parameter is required",
		})
	}

	companies, err := cc.companies.ListCompanies(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve companies",
		})
	}

	matches := make([]models.CRMCompany, 0)
	for _, company := range companies {
		if utils.SimilarCompanyName(company.Name, name) {
			matches = append(matches, company)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Similar companies retrieved",
		Data:    matches,
	})
}

func (cc *CRMController) logAction(ctx context.Context, c echo.Context, user models.User, action, details string) {
	entry := models.SystemLog{
		Timestamp: time.Now(),
		UserID:    user.ID.Hex(),
		UserName:  user.FullName,
		UserRole:  user.Role,
		Action:    action,
		Details:   details,
		IPAddress: c.RealIP(),
	}
	if err := cc.logs.Append(ctx, entry); err != nil {
		log.Printf("Failed to append audit log: %v", err)
	}
}
