// controllers/report_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/lifecycle"
	"github.com/gig-portal/eqrf_backend/models"
	"github.com/gig-portal/eqrf_backend/repositories"
)

// TatCycle is one measured submit cycle of a QRF, current or historical.
type TatCycle struct {
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	AssignedToName string     `json:"assignedToName,omitempty"`
	TatDays        int        `json:"tatDays"`
}

// TatReportRow is the turnaround breakdown for one QRF.
type TatReportRow struct {
	ID              string     `json:"id"`
	ReferenceNumber string     `json:"referenceNumber"`
	Name            string     `json:"name"`
	AgentName       string     `json:"agentName"`
	AssignedToName  string     `json:"assignedToName,omitempty"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	TatDays         int        `json:"tatDays"`
	Cycles          []TatCycle `json:"cycles,omitempty"`
}

// TatReport is the full turnaround report.
type TatReport struct {
	Rows             []TatReportRow `json:"rows"`
	StatusCounts     map[string]int `json:"statusCounts"`
	TypeCounts       map[string]int `json:"typeCounts"`
	RejectionReasons map[string]int `json:"rejectionReasons"`
	AverageTatDays   float64        `json:"averageTatDays"`
	DecidedCount     int            `json:"decidedCount"`
}

type ReportController struct {
	qrfs repositories.QRFStore
}

func NewReportController(qrfs repositories.QRFStore) *ReportController {
	return &ReportController{qrfs: qrfs}
}

// TatReport computes turnaround times across the whole book. Restricted to
// admin roles by the route.
func (rc *ReportController) TatReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	qrfs, err := rc.qrfs.FetchAllQRFs(ctx, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve QRFs",
		})
	}

	now := time.Now()
	report := TatReport{
		Rows:             make([]TatReportRow, 0, len(qrfs)),
		StatusCounts:     make(map[string]int),
		TypeCounts:       make(map[string]int),
		RejectionReasons: make(map[string]int),
	}
	var totalDays int

	for _, qrf := range qrfs {
		report.StatusCounts[qrf.Status]++
		for _, qrfType := range qrf.Types {
			report.TypeCounts[qrfType]++
		}
		if qrf.Status == models.StatusRejected && qrf.RejectionReason != "" {
			report.RejectionReasons[qrf.RejectionReason]++
		}

		row := TatReportRow{
			ID:              qrf.ID,
			ReferenceNumber: qrf.ReferenceNumber,
			Name:            qrf.Name,
			AgentName:       qrf.AgentName,
			AssignedToName:  qrf.AssignedToName,
			Status:          qrf.Status,
			SubmittedAt:     qrf.SubmittedAt,
			TatDays:         lifecycle.TatForQRF(qrf, now),
		}

		// Closed rejection cycles count toward the average too; only decided
		// cycles do, a live counter would skew it.
		for _, item := range qrf.History {
			cycleTat := lifecycle.TatForHistory(item, now)
			row.Cycles = append(row.Cycles, TatCycle{
				Status:         item.Status,
				SubmittedAt:    item.SubmittedAt,
				DecidedAt:      item.DecidedAt,
				AssignedToName: item.AssignedToName,
				TatDays:        cycleTat,
			})
			if cycleTat != lifecycle.TatNotApplicable {
				totalDays += cycleTat
				report.DecidedCount++
			}
		}

		decided := qrf.Status == models.StatusApproved || qrf.Status == models.StatusRejected
		if decided && row.TatDays != lifecycle.TatNotApplicable {
			totalDays += row.TatDays
			report.DecidedCount++
		}

		report.Rows = append(report.Rows, row)
	}

	if report.DecidedCount > 0 {
		report.AverageTatDays = float64(totalDays) / float64(report.DecidedCount)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "TaT report generated",
		Data:    report,
	})
}
