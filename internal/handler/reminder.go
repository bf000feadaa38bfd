package handler

import (
	"errors"
	"net/http"

	"github.com/caremind/medtrack-agent/internal/service"
	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderHandler implements the reminder endpoints
type ReminderHandler struct {
	service *service.ReminderService
	logger  *zap.Logger
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(service *service.ReminderService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		logger:  logger,
	}
}

type createReminderRequest struct {
	ProfileID string `json:"profile_id"`
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	Repeat    string `json:"repeat" binding:"required"`
}

// CreateReminder plans, persists and activates a reminder
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	reminder, err := h.service.CreateReminder(
		c.Request.Context(),
		req.ProfileID,
		req.Title,
		req.Body,
		req.Hour,
		req.Minute,
		model.RepeatMode(req.Repeat),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTime) {
			errorResponse(c, http.StatusBadRequest, "INVALID_TIME", err.Error())
			return
		}
		h.logger.Error("failed to create reminder", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create reminder")
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// ListReminders returns all persisted reminders
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	reminders, err := h.service.ListReminders(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list reminders", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reminders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// DeleteReminder cancels and removes a reminder
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.DeleteReminder(c.Request.Context(), id); err != nil {
		h.logger.Warn("failed to delete reminder",
			zap.Error(err),
			zap.String("reminder_id", id),
		)
		errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Reminder not found")
		return
	}

	c.Status(http.StatusNoContent)
}
