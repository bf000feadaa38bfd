package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/caremind/medtrack-agent/internal/pdf"
	"github.com/caremind/medtrack-agent/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdherenceHandler implements the adherence report endpoints
type AdherenceHandler struct {
	service *service.AdherenceService
	pdfGen  *pdf.Generator
	logger  *zap.Logger
}

// NewAdherenceHandler creates a new AdherenceHandler
func NewAdherenceHandler(service *service.AdherenceService, pdfGen *pdf.Generator, logger *zap.Logger) *AdherenceHandler {
	return &AdherenceHandler{
		service: service,
		pdfGen:  pdfGen,
		logger:  logger,
	}
}

// GetReport returns one profile's adherence report for a window
func (h *AdherenceHandler) GetReport(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_PROFILE", "profile_id is required")
		return
	}

	window, err := windowFromQuery(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
		return
	}

	report, err := h.service.Report(c.Request.Context(), profileID, window)
	if err != nil {
		h.logger.Error("failed to compute adherence report",
			zap.Error(err),
			zap.String("profile_id", profileID),
		)
		errorResponse(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Failed to fetch intake records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile_id": profileID,
		"window":     window,
		"report":     report,
	})
}

// GetCombinedReport merges reports across several profiles
func (h *AdherenceHandler) GetCombinedReport(c *gin.Context) {
	profileIDs := splitProfileIDs(c.Query("profile_ids"))
	if len(profileIDs) == 0 {
		errorResponse(c, http.StatusBadRequest, "MISSING_PROFILES", "profile_ids is required")
		return
	}

	window, err := windowFromQuery(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
		return
	}

	report, err := h.service.CombinedReport(c.Request.Context(), profileIDs, window)
	if err != nil {
		h.logger.Error("failed to compute combined adherence report",
			zap.Error(err),
			zap.Int("profiles", len(profileIDs)),
		)
		errorResponse(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Failed to fetch intake records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile_ids": profileIDs,
		"window":      window,
		"report":      report,
	})
}

// GetReportPDF renders one profile's adherence report as a PDF
func (h *AdherenceHandler) GetReportPDF(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_PROFILE", "profile_id is required")
		return
	}

	window, err := windowFromQuery(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
		return
	}

	report, err := h.service.Report(c.Request.Context(), profileID, window)
	if err != nil {
		h.logger.Error("failed to compute adherence report for PDF",
			zap.Error(err),
			zap.String("profile_id", profileID),
		)
		errorResponse(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Failed to fetch intake records")
		return
	}

	pdfBytes, err := h.pdfGen.Generate(&pdf.ReportData{
		ProfileName: c.Query("profile_name"),
		Window:      window,
		Report:      report,
	})
	if err != nil {
		h.logger.Error("failed to render report PDF", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render PDF")
		return
	}

	filename := fmt.Sprintf("adherence_%s_%s.pdf", profileID, window.From.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func splitProfileIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
