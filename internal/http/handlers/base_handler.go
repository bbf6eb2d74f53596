// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pharmago/internal/http/middleware"
	"pharmago/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps the error kinds services return onto status codes.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, types.ErrPermissionDenied):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, types.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrInvalidTransition):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, types.ErrRemote):
		writeError(c, http.StatusBadGateway, "upstream service unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// actor returns the caller; the role groups guarantee LoadProfile ran.
func actor(c *gin.Context) types.Actor {
	a, _ := middleware.Caller(c)
	return a
}

func pathID(c *gin.Context, name string) (types.ID, bool) {
	id := c.Param(name)
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing "+name)
		return "", false
	}
	return types.ID(id), true
}

// queryPoint reads ?lat=&lng= into a point.
func queryPoint(c *gin.Context) (types.Point, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng query parameters are required")
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
