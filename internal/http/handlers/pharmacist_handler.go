// README: Pharmacist handlers for the incoming order queue.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmago/internal/modules/order"
	"pharmago/internal/types"
)

var errNoPrescription = types.Validation("order has no prescription attached")

type PharmacistHandler struct {
	orders        OrderService
	prescriptions PrescriptionService
}

func NewPharmacistHandler(orders OrderService, prescriptions PrescriptionService) *PharmacistHandler {
	return &PharmacistHandler{orders: orders, prescriptions: prescriptions}
}

// Queue lists the pharmacy's pending orders, most urgent first.
func (h *PharmacistHandler) Queue(c *gin.Context) {
	orders, err := h.orders.PharmacyQueue(c.Request.Context(), actor(c).PharmacyID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": orders})
}

func (h *PharmacistHandler) Accept(c *gin.Context) {
	h.decide(c, h.orders.PharmacyAccept)
}

func (h *PharmacistHandler) Decline(c *gin.Context) {
	h.decide(c, h.orders.PharmacyDecline)
}

func (h *PharmacistHandler) decide(c *gin.Context, fn func(ctx context.Context, cmd order.PharmacyDecisionCommand) (*order.Order, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := fn(c.Request.Context(), order.PharmacyDecisionCommand{OrderID: id, Pharmacist: actor(c)})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

// Prescription renders the prescription attached to one of the pharmacy's orders.
func (h *PharmacistHandler) Prescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	o, err := h.orders.GetFor(ctx, id, actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if o.PrescriptionID == nil {
		writeServiceError(c, errNoPrescription)
		return
	}
	doc, err := h.prescriptions.Document(ctx, *o.PrescriptionID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}
