package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/response"
)

// PlanHandler handles HTTP requests for saved route plans.
type PlanHandler struct {
	service *application.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(service *application.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// RegisterRoutes registers all plan routes on the given router group.
func (h *PlanHandler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/api/v1/plans")
	{
		plans.POST("", h.CreatePlan)
		plans.GET("", h.ListPlans)
		plans.GET("/stats", h.PlanStats)
		plans.GET("/:id", h.GetPlan)
		plans.PATCH("/:id", h.RenamePlan)
		plans.PUT("/:id/points", h.ReplacePoints)
		plans.POST("/:id/waypoints", h.AddWaypoint)
		plans.DELETE("/:id/waypoints/:index", h.RemoveWaypoint)
		plans.POST("/:id/compute", h.ComputePlan)
		plans.DELETE("/:id", h.ArchivePlan)
	}
}

// CreatePlan handles POST /api/v1/plans.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req application.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePlan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPlans handles GET /api/v1/plans?status=&page=&limit=.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListPlans(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// PlanStats handles GET /api/v1/plans/stats.
func (h *PlanHandler) PlanStats(c *gin.Context) {
	stats, err := h.service.GetPlanStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// GetPlan handles GET /api/v1/plans/:id.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	result, err := h.service.GetPlan(c.Request.Context(), planID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RenamePlan handles PATCH /api/v1/plans/:id.
func (h *PlanHandler) RenamePlan(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	var req application.RenamePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RenamePlan(c.Request.Context(), planID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReplacePoints handles PUT /api/v1/plans/:id/points.
func (h *PlanHandler) ReplacePoints(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	var req application.ReplacePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ReplacePoints(c.Request.Context(), planID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddWaypoint handles POST /api/v1/plans/:id/waypoints.
func (h *PlanHandler) AddWaypoint(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	var req application.AddWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddWaypoint(c.Request.Context(), planID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveWaypoint handles DELETE /api/v1/plans/:id/waypoints/:index.
func (h *PlanHandler) RemoveWaypoint(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid waypoint index")
		return
	}

	result, err := h.service.RemoveWaypoint(c.Request.Context(), planID, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ComputePlan handles POST /api/v1/plans/:id/compute.
func (h *PlanHandler) ComputePlan(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	result, err := h.service.ComputePlan(c.Request.Context(), planID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ArchivePlan handles DELETE /api/v1/plans/:id.
func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	planID, ok := parsePlanID(c)
	if !ok {
		return
	}

	result, err := h.service.ArchivePlan(c.Request.Context(), planID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func parsePlanID(c *gin.Context) (uuid.UUID, bool) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan ID")
		return uuid.Nil, false
	}
	return planID, true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
