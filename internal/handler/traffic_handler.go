package handler

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/response"
)

// TrafficHandler exposes the traffic-impact colour scale.
type TrafficHandler struct {
	scale traffic.Scale
}

// NewTrafficHandler creates a new TrafficHandler.
func NewTrafficHandler(scale traffic.Scale) *TrafficHandler {
	return &TrafficHandler{scale: scale}
}

// RegisterRoutes registers the traffic routes on the given router group.
func (h *TrafficHandler) RegisterRoutes(r *gin.RouterGroup) {
	t := r.Group("/api/v1/traffic")
	{
		t.GET("/legend", h.Legend)
		t.GET("/color", h.Color)
	}
}

// Legend handles GET /api/v1/traffic/legend.
func (h *TrafficHandler) Legend(c *gin.Context) {
	response.Success(c, gin.H{
		"stops":   h.scale.Legend(),
		"no_data": h.scale.NoDataColor(),
	})
}

// Color handles GET /api/v1/traffic/color?ratio=.
func (h *TrafficHandler) Color(c *gin.Context) {
	ratio, err := strconv.ParseFloat(c.Query("ratio"), 64)
	if err != nil || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		response.BadRequest(c, "ratio query parameter must be a finite number")
		return
	}

	response.Success(c, traffic.NewImpact(&ratio, h.scale))
}
