// README: Patient cart handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmago/internal/modules/cart"
	"pharmago/internal/types"
)

type CartHandler struct {
	carts      CartService
	pharmacies PharmacyService
}

func NewCartHandler(carts CartService, pharmacies PharmacyService) *CartHandler {
	return &CartHandler{carts: carts, pharmacies: pharmacies}
}

type cartView struct {
	PharmacyID   string      `json:"pharmacy_id,omitempty"`
	PharmacyName string      `json:"pharmacy_name,omitempty"`
	Items        []cart.Item `json:"items"`
	Subtotal     string      `json:"subtotal"`
}

func viewCart(c *cart.Cart) cartView {
	return cartView{
		PharmacyID:   string(c.PharmacyID()),
		PharmacyName: c.PharmacyName(),
		Items:        c.Items(),
		Subtotal:     c.Subtotal().StringFixed(2),
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	ct, err := h.carts.Get(c.Request.Context(), actor(c).ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewCart(ct))
}

type addItemReq struct {
	MedicineID string `json:"medicine_id"`
}

// Add puts a catalogue medicine in the cart; price and pharmacy come from the
// catalogue, not the client.
func (h *CartHandler) Add(c *gin.Context) {
	var req addItemReq
	if !bindJSON(c, &req) {
		return
	}
	if req.MedicineID == "" {
		writeError(c, http.StatusBadRequest, "missing medicine_id")
		return
	}
	ctx := c.Request.Context()
	m, err := h.pharmacies.Medicine(ctx, types.ID(req.MedicineID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ph, err := h.pharmacies.Get(ctx, m.PharmacyID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ct, err := h.carts.Add(ctx, actor(c).ID, cart.Item{
		MedicineID:   m.ID,
		MedicineName: m.Name,
		Price:        m.Price,
		PharmacyID:   ph.ID,
		PharmacyName: ph.Name,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewCart(ct))
}

type updateQuantityReq struct {
	Name  string `json:"medicine_name"`
	Delta int    `json:"delta"`
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityReq
	if !bindJSON(c, &req) {
		return
	}
	ct, err := h.carts.UpdateQuantity(c.Request.Context(), actor(c).ID, req.Name, req.Delta)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewCart(ct))
}

func (h *CartHandler) Remove(c *gin.Context) {
	name := c.Param("name")
	ct, err := h.carts.Remove(c.Request.Context(), actor(c).ID, name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewCart(ct))
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), actor(c).ID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
