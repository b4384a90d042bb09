package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/response"
)

// GeocodeHandler handles HTTP requests for address search.
type GeocodeHandler struct {
	service *application.GeocodeService
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(service *application.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

// RegisterRoutes registers the geocoding routes on the given router group.
func (h *GeocodeHandler) RegisterRoutes(r *gin.RouterGroup) {
	geocode := r.Group("/api/v1/geocode")
	{
		geocode.GET("", h.Search)
		geocode.GET("/reverse", h.Reverse)
	}
}

// Search handles GET /api/v1/geocode?q=&limit=&proximity=lat,lng.
func (h *GeocodeHandler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	var proximity *geo.Coordinate
	if raw := c.Query("proximity"); raw != "" {
		p, err := geo.ParseCoordinate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		proximity = &p
	}

	places, err := h.service.Search(c.Request.Context(), c.Query("q"), limit, proximity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, places)
}

// Reverse handles GET /api/v1/geocode/reverse?lat=&lng=.
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		response.BadRequest(c, "lat and lng query parameters are required")
		return
	}

	result, err := h.service.Reverse(c.Request.Context(), geo.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
