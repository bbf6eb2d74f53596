// README: Driver live position handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmago/internal/types"
)

type LocationHandler struct {
	positions PositionStore
}

func NewLocationHandler(positions PositionStore) *LocationHandler {
	return &LocationHandler{positions: positions}
}

type positionReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Update records the calling driver's position. Drivers can only move
// themselves; the id comes from the token.
func (h *LocationHandler) Update(c *gin.Context) {
	var req positionReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(c, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	err := h.positions.UpdateDriverPosition(c.Request.Context(), actor(c).ID, types.Point{Lat: *req.Latitude, Lng: *req.Longitude})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
