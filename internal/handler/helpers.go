package handler

import (
	"fmt"
	"time"

	"github.com/caremind/medtrack-agent/internal/service"
	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/gin-gonic/gin"
)

// errorResponse writes a structured error body
func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// windowFromQuery builds the report window from query parameters. Callers
// pass either period=week|month or an explicit from/to pair (RFC3339 or
// date-only YYYY-MM-DD).
func windowFromQuery(c *gin.Context) (model.TimeWindow, error) {
	period := c.Query("period")
	from := c.Query("from")
	to := c.Query("to")

	switch {
	case period != "":
		return service.ResolvePeriod(period, time.Now())
	case from != "" && to != "":
		return service.WindowFromStrings(from, to)
	default:
		return model.TimeWindow{}, fmt.Errorf("either period or both from and to are required")
	}
}
