package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/service"
)

// AnalyticsController serves the reporting and export endpoints.
type AnalyticsController struct {
	analyticsService service.AnalyticsService
	reportService    service.ReportService
}

func NewAnalyticsController(analyticsService service.AnalyticsService, reportService service.ReportService) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
		reportService:    reportService,
	}
}

func (c *AnalyticsController) GetSummary(ctx *gin.Context) {
	period := ctx.DefaultQuery("period", ledger.PeriodToday)

	var start, end time.Time
	if period == ledger.PeriodCustom {
		var err error
		start, end, err = customWindowParams(ctx)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid custom period",
				Message: err.Error(),
			})
			return
		}
	}

	summary, err := c.analyticsService.Summary(ctx.Request.Context(), period, start, end)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to compute analytics",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func (c *AnalyticsController) GetRates(ctx *gin.Context) {
	period := ctx.DefaultQuery("period", ledger.PeriodToday)

	rates, err := c.analyticsService.Rates(ctx.Request.Context(), period)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to compute rates",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, rates)
}

func (c *AnalyticsController) ExportTransactions(ctx *gin.Context) {
	period := ctx.DefaultQuery("period", ledger.PeriodMonth)

	var start, end time.Time
	if period == ledger.PeriodCustom {
		var err error
		start, end, err = customWindowParams(ctx)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid custom period",
				Message: err.Error(),
			})
			return
		}
	}

	data, err := c.reportService.ExportTransactionsCSV(ctx.Request.Context(), period, start, end)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to export transactions",
			Message: err.Error(),
		})
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}

func (c *AnalyticsController) ExportAuditTrail(ctx *gin.Context) {
	filter := &models.AuditFilter{
		Type:   ctx.Query("type"),
		Actor:  ctx.Query("actor"),
		Target: ctx.Query("target"),
	}
	if v := ctx.Query("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = t
		}
	}
	if v := ctx.Query("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = t
		}
	}

	data, err := c.reportService.ExportAuditTrailCSV(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to export audit trail",
			Message: err.Error(),
		})
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="audit_trail.csv"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}
