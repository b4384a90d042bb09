package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/response"
)

// SessionHeader identifies the browser tab issuing requests. Requests sharing a session
// are answered latest-wins.
const SessionHeader = "X-Session-ID"

// RoutingHandler handles HTTP requests for routes, tables and geometry conversion.
type RoutingHandler struct {
	routes *application.RouteService
	tables *application.TableService
}

// NewRoutingHandler creates a new RoutingHandler.
func NewRoutingHandler(routes *application.RouteService, tables *application.TableService) *RoutingHandler {
	return &RoutingHandler{routes: routes, tables: tables}
}

// RegisterRoutes registers the routing routes on the given router group.
func (h *RoutingHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1")
	{
		api.POST("/routes", h.ComputeRoute)
		api.POST("/tables", h.ComputeTable)
		api.POST("/geometry/convert", h.ConvertGeometry)
	}
}

// ComputeRoute handles POST /api/v1/routes.
func (h *RoutingHandler) ComputeRoute(c *gin.Context) {
	var req application.ComputeRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.routes.ComputeRoute(c.Request.Context(), c.GetHeader(SessionHeader), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ComputeTable handles POST /api/v1/tables.
func (h *RoutingHandler) ComputeTable(c *gin.Context) {
	var req application.ComputeTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.tables.ComputeTable(c.Request.Context(), c.GetHeader(SessionHeader), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type convertGeometryRequest struct {
	From     string          `json:"from" binding:"required"`
	To       string          `json:"to" binding:"required"`
	Geometry json.RawMessage `json:"geometry" binding:"required"`
}

// ConvertGeometry handles POST /api/v1/geometry/convert.
func (h *RoutingHandler) ConvertGeometry(c *gin.Context) {
	var req convertGeometryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	from, err := geo.ParseGeometryFormat(req.From)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := geo.ParseGeometryFormat(req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	g, err := geo.ConvertGeometry(req.Geometry, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"format": to, "geometry": g})
}
