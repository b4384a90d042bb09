package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/config"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/response"
)

// MapConfigDTO is what the demo page needs to initialise the map.
type MapConfigDTO struct {
	StyleURL    string         `json:"style_url"`
	Center      geo.Coordinate `json:"center"`
	Zoom        float64        `json:"zoom"`
	PublicToken string         `json:"public_token"`
	DebounceMS  int64          `json:"debounce_ms"`
}

// MapHandler serves the demo page and its map settings.
type MapHandler struct {
	cfg  MapConfigDTO
	page []byte
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(cfg config.MapConfig, debounceMS int64, page []byte) *MapHandler {
	return &MapHandler{
		cfg: MapConfigDTO{
			StyleURL:    cfg.StyleURL,
			Center:      cfg.Center,
			Zoom:        cfg.Zoom,
			PublicToken: cfg.PublicToken,
			DebounceMS:  debounceMS,
		},
		page: page,
	}
}

// RegisterRoutes registers the page and map config routes.
func (h *MapHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Index)
	r.GET("/api/v1/map/config", h.Config)
}

// Index handles GET /.
func (h *MapHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}

// Config handles GET /api/v1/map/config.
func (h *MapHandler) Config(c *gin.Context) {
	response.Success(c, h.cfg)
}
