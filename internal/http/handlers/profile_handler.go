// README: Profile handlers for registration, role dispatch and the patient QR code.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmago/internal/http/middleware"
	"pharmago/internal/modules/profile"
	"pharmago/internal/types"
)

type ProfileHandler struct {
	profiles ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: svc}
}

type registerReq struct {
	Role       string `json:"role"`
	FullName   string `json:"full_name"`
	Age        int    `json:"age"`
	PharmacyID string `json:"pharmacy_id"`
}

func (h *ProfileHandler) Register(c *gin.Context) {
	var req registerReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.Register(c.Request.Context(), profile.RegisterCommand{
		ID:         types.ID(middleware.CallerUID(c)),
		Role:       types.Role(req.Role),
		FullName:   req.FullName,
		Age:        req.Age,
		PharmacyID: types.ID(req.PharmacyID),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	home, _ := profile.HomeFor(p.Role)
	writeJSON(c, http.StatusOK, gin.H{"profile": p, "home": home})
}

func (h *ProfileHandler) Me(c *gin.Context) {
	writeJSON(c, http.StatusOK, middleware.CallerProfile(c))
}

// Home tells the client which surface the caller's role lands on.
func (h *ProfileHandler) Home(c *gin.Context) {
	p := middleware.CallerProfile(c)
	home, ok := profile.HomeFor(p.Role)
	if !ok {
		writeError(c, http.StatusForbidden, "no home surface for role "+string(p.Role))
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"role": p.Role, "home": home})
}

func (h *ProfileHandler) QRCode(c *gin.Context) {
	png, err := h.profiles.QRCode(c.Request.Context(), actor(c).ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
