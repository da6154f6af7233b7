package handlers

import (
	"log"

	"salesku/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles HTTP requests for the admin review views.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// RegisterRoutes registers the reporting routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	reportRoutes := router.Group("/reports", authRequired, adminOnly)
	reportRoutes.Get("/daily", h.HandleDailyProgress)
	reportRoutes.Get("/monthly", h.HandleMonthlyAchievements)
}

// HandleDailyProgress returns the reverse-chronological submission feed.
func (h *ReportHandler) HandleDailyProgress(c *fiber.Ctx) error {
	report, err := h.reportService.DailyProgress(c.Context())
	if err != nil {
		log.Printf("Error building daily progress report: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not build daily progress report",
		})
	}
	return c.JSON(report)
}

// HandleMonthlyAchievements returns per-agent target achievement for the
// current month. Recomputed in full on every call.
func (h *ReportHandler) HandleMonthlyAchievements(c *fiber.Ctx) error {
	achievements, err := h.reportService.MonthlyAchievements(c.Context())
	if err != nil {
		log.Printf("Error building monthly achievement report: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not build monthly achievement report",
		})
	}
	return c.JSON(fiber.Map{
		"achievements": achievements,
	})
}
