package handler

import (
	"context"
	"net/http"

	"github.com/caremind/medtrack-agent/internal/service"
	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler implements the push registration endpoints. The UI layer
// owns the OS permission prompt and passes its outcome through; an absent
// token arrives here as an empty string and maps to granted=false.
type DeviceHandler struct {
	service *service.DeviceService
	logger  *zap.Logger
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(service *service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		service: service,
		logger:  logger,
	}
}

type registerDeviceRequest struct {
	Platform string `json:"platform"`
	Token    string `json:"token"`
}

// RegisterDevice syncs the supplied push token with the server registry
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	platform := model.NormalizePlatform(req.Platform)
	result, err := h.service.EnsureRegistered(c.Request.Context(), platform,
		func(ctx context.Context) (string, error) {
			return req.Token, nil
		},
	)
	if err != nil {
		h.logger.Error("device registration failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register device")
		return
	}

	response := gin.H{
		"granted": result.Granted,
	}
	if result.Token != "" {
		response["token"] = result.Token
	}
	if result.ServerDeviceID != nil {
		response["server_device_id"] = *result.ServerDeviceID
	}
	if result.UpstreamErr != nil {
		response["upstream_error"] = result.UpstreamErr.Error()
	}

	c.JSON(http.StatusOK, response)
}

// RevokeDevice removes this device's registration. A revoke that cannot
// reach the server still clears the local cache and reports revoked=false
// rather than failing, so logout is never blocked.
func (h *DeviceHandler) RevokeDevice(c *gin.Context) {
	revoked, err := h.service.RevokeCurrent(c.Request.Context())
	if err != nil {
		h.logger.Error("device revoke failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke device")
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}
